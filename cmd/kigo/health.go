package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check that the server is reachable",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := kigoClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", serverAddr, err)
		}
		if jsonOutput {
			return printJSON(map[string]string{"server": serverAddr, "transport": transport, "status": status})
		}
		fmt.Printf("%s (%s): %s\n", serverAddr, transport, status)
		return nil
	},
}
