package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var presetKinds = []string{"tokens", "ads", "ad-groups", "campaigns"}

var presetsCmd = &cobra.Command{
	Use:       "presets <kind>",
	Short:     "Show the filter presets of a list",
	Long:      "Show the filter presets of a list. Kinds: tokens, ads, ad-groups, campaigns.",
	GroupID:   "views",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: presetKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		presets, err := hc.ListPresets(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(presets)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLABEL\tDESCRIPTION")
		for _, p := range presets {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Label, p.Description)
		}
		return w.Flush()
	},
}
