package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/config"
	kigosync "github.com/kigopro/kigo/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write campaigns, ad groups and ads as JSONL",
	Long: `Write campaigns, ad groups and ads as JSONL, the format the sync
scheduler uploads. Reads KIGO_DATABASE_URL; without it the demo data is
exported.`,
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		ctx := context.Background()
		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" && path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return kigosync.ExportJSONL(ctx, st, out)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
