package sync

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// Record types written after the header line.
const (
	TypeHeader   = "header"
	TypeCampaign = "campaign"
	TypeAdGroup  = "ad_group"
	TypeAd       = "ad"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	CampaignCount int       `json:"campaign_count"`
	AdGroupCount  int       `json:"ad_group_count"`
	AdCount       int       `json:"ad_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every campaign, ad group and ad in the store as JSONL
// to w. Each record type is written in ID order.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	campaigns, err := store.Collect(ctx, s.ListCampaigns, model.SortSpec{})
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}
	groups, err := store.Collect(ctx, s.ListAdGroups, model.SortSpec{})
	if err != nil {
		return fmt.Errorf("list ad groups: %w", err)
	}
	ads, err := store.Collect(ctx, s.ListAds, model.SortSpec{})
	if err != nil {
		return fmt.Errorf("list ads: %w", err)
	}

	slices.SortFunc(campaigns, func(a, b *model.Campaign) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(groups, func(a, b *model.AdGroup) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(ads, func(a, b *model.Ad) int { return cmp.Compare(a.ID, b.ID) })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       "1",
		Type:          TypeHeader,
		Timestamp:     time.Now().UTC(),
		CampaignCount: len(campaigns),
		AdGroupCount:  len(groups),
		AdCount:       len(ads),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, c := range campaigns {
		if err := enc.Encode(record{Type: TypeCampaign, Data: c}); err != nil {
			return fmt.Errorf("encode campaign %s: %w", c.ID, err)
		}
	}
	for _, g := range groups {
		if err := enc.Encode(record{Type: TypeAdGroup, Data: g}); err != nil {
			return fmt.Errorf("encode ad group %s: %w", g.ID, err)
		}
	}
	for _, a := range ads {
		if err := enc.Encode(record{Type: TypeAd, Data: a}); err != nil {
			return fmt.Errorf("encode ad %s: %w", a.ID, err)
		}
	}

	return nil
}
