package main

import (
	"context"

	"github.com/spf13/cobra"
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Short:   "Find customers",
	GroupID: "tokens",
}

var customersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search customers by name, email, phone or ExtraCare ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		if len(args) == 1 {
			req.Query = args[0]
		}
		resp, err := kigoClient.SearchCustomers(context.Background(), req)
		if err != nil {
			return err
		}
		return printResponse(customerColumns, resp)
	},
}

func init() {
	addListFlags(customersSearchCmd)
	customersCmd.AddCommand(customersSearchCmd)
}
