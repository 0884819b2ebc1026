package fixtures

import (
	"context"
	"fmt"

	"github.com/kigopro/kigo/internal/store"
)

// Seed writes ds into s in a single transaction. Records that already
// exist make the whole seed fail with store.ErrConflict.
func Seed(ctx context.Context, s store.Store, ds *Dataset) error {
	return s.RunInTransaction(ctx, func(tx store.Store) error {
		for _, c := range ds.Customers {
			if err := tx.CreateCustomer(ctx, c); err != nil {
				return fmt.Errorf("seed customer %s: %w", c.ID, err)
			}
		}
		for _, t := range append(ds.Tokens, ds.Catalog...) {
			if err := tx.CreateToken(ctx, t); err != nil {
				return fmt.Errorf("seed token %s: %w", t.ID, err)
			}
		}
		for _, a := range ds.Ads {
			if err := tx.CreateAd(ctx, a); err != nil {
				return fmt.Errorf("seed ad %s: %w", a.ID, err)
			}
		}
		for _, g := range ds.AdGroups {
			if err := tx.CreateAdGroup(ctx, g); err != nil {
				return fmt.Errorf("seed ad group %s: %w", g.ID, err)
			}
		}
		for _, c := range ds.Campaigns {
			if err := tx.CreateCampaign(ctx, c); err != nil {
				return fmt.Errorf("seed campaign %s: %w", c.ID, err)
			}
		}
		return nil
	})
}
