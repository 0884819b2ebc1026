package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

func TestWatcher_Diff(t *testing.T) {
	w := newWatcher(campaignColumns, nil, func(c *model.Campaign) string { return c.ID })

	a := &model.Campaign{ID: "cmp-001", Name: "Summer", Budget: decimal.NewFromInt(100)}
	b := &model.Campaign{ID: "cmp-002", Name: "Fall", Budget: decimal.NewFromInt(200)}

	if got := w.diff([]*model.Campaign{a, b}); len(got) != 2 {
		t.Fatalf("first diff = %d items, want 2", len(got))
	}
	if got := w.diff([]*model.Campaign{a, b}); len(got) != 0 {
		t.Errorf("unchanged diff = %d items, want 0", len(got))
	}

	b2 := *b
	b2.Budget = decimal.NewFromInt(250)
	got := w.diff([]*model.Campaign{a, &b2})
	if len(got) != 1 || got[0].ID != "cmp-002" {
		t.Errorf("changed diff = %v, want [cmp-002]", got)
	}
}

func TestWatcher_Once(t *testing.T) {
	calls := 0
	items := []*model.Ad{
		{ID: "ad-001", Name: "20% off vitamins", Status: model.AdActive},
	}
	w := newWatcher(adColumns, func(context.Context) (*listing.Response[*model.Ad], error) {
		calls++
		resp := listing.NewResponse(listing.PageOf(items, len(items), model.Pagination{CurrentPage: 1, PageSize: 10}))
		return &resp, nil
	}, func(a *model.Ad) string { return a.ID })

	var out bytes.Buffer
	if err := w.run(context.Background(), watchOptions{out: &out, once: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetched %d times, want 1", calls)
	}
	if !strings.Contains(out.String(), "1 changed") || !strings.Contains(out.String(), "ad-001") {
		t.Errorf("output:\n%s", out.String())
	}
}
