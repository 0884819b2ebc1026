package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/config"
	"github.com/kigopro/kigo/internal/fixtures"
	"github.com/kigopro/kigo/internal/store/postgres"
)

var seedCmd = &cobra.Command{
	Use:               "seed",
	Short:             "Load the demo dataset into the configured database",
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("KIGO_DATABASE_URL is not set")
		}
		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		ds := fixtures.Load(time.Now())
		if err := fixtures.Seed(context.Background(), st, ds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers, %d tokens, %d ads, %d ad groups, %d campaigns\n",
			len(ds.Customers), len(ds.Tokens)+len(ds.Catalog), len(ds.Ads), len(ds.AdGroups), len(ds.Campaigns))
		return nil
	},
}
