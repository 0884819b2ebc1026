package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/model"
)

var adsCmd = &cobra.Command{
	Use:     "ads",
	Short:   "Browse ads",
	GroupID: "campaigns",
}

var adsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		resp, err := kigoClient.ListAds(context.Background(), req)
		if err != nil {
			return err
		}
		return printResponse(adColumns, resp)
	},
}

var adGroupsCmd = &cobra.Command{
	Use:     "adgroups",
	Aliases: []string{"ad-groups"},
	Short:   "Browse and create ad groups",
	GroupID: "campaigns",
}

var adGroupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ad groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		resp, err := kigoClient.ListAdGroups(context.Background(), req)
		if err != nil {
			return err
		}
		return printResponse(adGroupColumns, resp)
	},
}

var adGroupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an ad group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		adIDs, _ := cmd.Flags().GetStringSlice("ad")
		g, err := hc.CreateAdGroup(context.Background(), &model.AdGroup{
			Name:        args[0],
			Description: description,
			Status:      model.AdGroupStatus(status),
			AdIDs:       adIDs,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(g)
		}
		fmt.Printf("Created ad group %s: %s (%d ads)\n", g.ID, g.Name, len(g.AdIDs))
		return nil
	},
}

func init() {
	addListFlags(adsListCmd)
	addListFlags(adGroupsListCmd)
	adGroupsCreateCmd.Flags().String("description", "", "description")
	adGroupsCreateCmd.Flags().String("status", string(model.AdGroupDraft), "status (active, paused, draft)")
	adGroupsCreateCmd.Flags().StringSlice("ad", nil, "ad ID to include (repeatable)")

	adsCmd.AddCommand(adsListCmd)
	adGroupsCmd.AddCommand(adGroupsListCmd)
	adGroupsCmd.AddCommand(adGroupsCreateCmd)
}
