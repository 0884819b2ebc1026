package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/model"
)

var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Short:   "Browse and create campaigns",
	GroupID: "campaigns",
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	Long: `List campaigns.

Presets: running, upcoming, ended. For example:
  kigo campaigns list --preset running --sort -budget`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		resp, err := kigoClient.ListCampaigns(context.Background(), req)
		if err != nil {
			return err
		}
		return printResponse(campaignColumns, resp)
	},
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		c, err := campaignFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		created, err := hc.CreateCampaign(context.Background(), c)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(created)
		}
		fmt.Printf("Created campaign %s: %s [%s]\n", created.ID, created.Name, campaignStatusLabel(created.Status))
		return nil
	},
}

func campaignFromFlags(cmd *cobra.Command, name string) (*model.Campaign, error) {
	f := cmd.Flags()
	c := &model.Campaign{Name: name, CreatedBy: actor}
	c.PartnerID, _ = f.GetString("partner-id")
	c.PartnerName, _ = f.GetString("partner")
	c.ProgramID, _ = f.GetString("program-id")
	c.ProgramName, _ = f.GetString("program")
	c.Description, _ = f.GetString("description")
	c.AutoActivate, _ = f.GetBool("auto-activate")
	c.AutoDeactivate, _ = f.GetBool("auto-deactivate")

	typ, _ := f.GetString("type")
	c.Type = model.CampaignType(typ)
	if !c.Type.IsValid() {
		return nil, fmt.Errorf("--type: %q is not one of promotional, targeted, seasonal", typ)
	}

	for _, d := range []struct {
		flag string
		dst  *model.Date
	}{
		{"start", &c.StartDate},
		{"end", &c.EndDate},
	} {
		v, _ := f.GetString(d.flag)
		*d.dst = model.ParseDate(v)
		if !d.dst.Valid() {
			return nil, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", d.flag, v)
		}
	}

	budget, _ := f.GetString("budget")
	b, err := decimal.NewFromString(strings.TrimPrefix(budget, "$"))
	if err != nil {
		return nil, fmt.Errorf("--budget: %q is not an amount", budget)
	}
	c.Budget = b
	return c, nil
}

func init() {
	addListFlags(campaignsListCmd)

	f := campaignsCreateCmd.Flags()
	f.String("partner-id", "", "partner ID")
	f.String("partner", "", "partner name")
	f.String("program-id", "", "program ID")
	f.String("program", "", "program name")
	f.String("type", string(model.CampaignPromotional), "campaign type (promotional, targeted, seasonal)")
	f.String("description", "", "description")
	f.String("start", "", "start date (YYYY-MM-DD)")
	f.String("end", "", "end date (YYYY-MM-DD)")
	f.String("budget", "", "budget, e.g. $5000")
	f.Bool("auto-activate", false, "activate on the start date")
	f.Bool("auto-deactivate", false, "deactivate after the end date")
	_ = campaignsCreateCmd.MarkFlagRequired("start")
	_ = campaignsCreateCmd.MarkFlagRequired("end")
	_ = campaignsCreateCmd.MarkFlagRequired("budget")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
}
