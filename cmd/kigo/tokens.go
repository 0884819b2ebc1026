package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/client"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Short:   "List and support customer tokens",
	GroupID: "tokens",
}

var tokensListCmd = &cobra.Command{
	Use:   "list <customer-id>",
	Short: "List a customer's tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		resp, err := kigoClient.ListTokens(context.Background(), args[0], req)
		if err != nil {
			return err
		}
		return printResponse(tokenColumns, resp)
	},
}

var tokensCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List unclaimed catalog tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		resp, err := kigoClient.ListCatalog(context.Background(), req)
		if err != nil {
			return err
		}
		return printResponse(tokenColumns, resp)
	},
}

var tokensGetCmd = &cobra.Command{
	Use:   "get <token-id>",
	Short: "Show one token with its support history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := kigoClient.GetToken(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printToken(t)
	},
}

func supportRequestFromFlags(cmd *cobra.Command) (*client.SupportRequest, error) {
	reason, _ := cmd.Flags().GetString("reason")
	if reason == "" {
		return nil, fmt.Errorf("--reason is required")
	}
	comments, _ := cmd.Flags().GetString("comments")
	notHonored, _ := cmd.Flags().GetBool("not-honored")
	return &client.SupportRequest{Reason: reason, Comments: comments, NotHonored: notHonored, Actor: actor}, nil
}

var tokensReissueCmd = &cobra.Command{
	Use:   "reissue <token-id>",
	Short: "Expire a token and issue a replacement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		req, err := supportRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		resp, err := hc.ReissueToken(context.Background(), args[0], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}
		fmt.Printf("Reissued %s as %s (expires %s)\n", resp.Original.ID, resp.Replacement.ID, resp.Replacement.ExpirationDate)
		return nil
	},
}

var tokensDisputeCmd = &cobra.Command{
	Use:   "dispute <token-id>",
	Short: "Flag a token as disputed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		req, err := supportRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		t, err := hc.DisputeToken(context.Background(), args[0], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(t)
		}
		fmt.Printf("Disputed %s: %s\n", t.ID, t.DisputeReason)
		return nil
	},
}

var tokensBrowseCmd = &cobra.Command{
	Use:   "browse <customer-id>",
	Short: "Page interactively through a customer's tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID := args[0]
		pageSize, _ := cmd.Flags().GetInt("page-size")
		src := client.SourceFunc[*model.Token](func(ctx context.Context, req client.ListRequest) (*listing.Response[*model.Token], error) {
			return kigoClient.ListTokens(ctx, customerID, req)
		})
		b := newBrowser(src, tokenColumns, listing.TokenPresets, pageSize)
		return b.Run(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	addListFlags(tokensListCmd)
	addListFlags(tokensCatalogCmd)
	for _, c := range []*cobra.Command{tokensReissueCmd, tokensDisputeCmd} {
		c.Flags().String("reason", "", "reason for the support action (required)")
		c.Flags().String("comments", "", "additional comments")
		c.Flags().Bool("not-honored", false, "the store did not honor the token")
	}
	tokensBrowseCmd.Flags().Int("page-size", model.DefaultPageSize, "items per page")

	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensCatalogCmd)
	tokensCmd.AddCommand(tokensGetCmd)
	tokensCmd.AddCommand(tokensReissueCmd)
	tokensCmd.AddCommand(tokensDisputeCmd)
	tokensCmd.AddCommand(tokensBrowseCmd)
}
