package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kigopro/kigo/internal/fixtures"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store/memory"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New(func() time.Time { return now })
	if err := fixtures.Seed(context.Background(), s, fixtures.Load(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestExportJSONL_Empty(t *testing.T) {
	s := memory.New(nil)
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), s, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != TypeHeader || h.CampaignCount != 0 || h.AdGroupCount != 0 || h.AdCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_Seeded(t *testing.T) {
	s := seededStore(t)
	ds := fixtures.Load(now)

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), s, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	want := 1 + len(ds.Campaigns) + len(ds.AdGroups) + len(ds.Ads)
	if len(lines) != want {
		t.Fatalf("expected %d lines, got %d", want, len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.CampaignCount != len(ds.Campaigns) || h.AdGroupCount != len(ds.AdGroups) || h.AdCount != len(ds.Ads) {
		t.Fatalf("header counts: %+v", h)
	}

	var types []string
	var ids []string
	for _, line := range lines[1:] {
		var rec struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal record: %v", err)
		}
		var id struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(rec.Data, &id); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if len(types) == 0 || types[len(types)-1] != rec.Type {
			types = append(types, rec.Type)
		}
		if rec.Type == TypeCampaign {
			ids = append(ids, id.ID)
		}
	}
	if diff := cmp.Diff([]string{TypeCampaign, TypeAdGroup, TypeAd}, types); diff != "" {
		t.Errorf("record order mismatch (-want +got):\n%s", diff)
	}
	wantIDs := []string{"cmp-001", "cmp-002", "cmp-003", "cmp-004", "cmp-005", "cmp-006"}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Errorf("campaign ids mismatch (-want +got):\n%s", diff)
	}
}

// Exported campaigns carry the status derived as of the export.
func TestExportJSONL_CampaignStatus(t *testing.T) {
	s := seededStore(t)
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), s, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range nonEmptyLines(buf.String()) {
		var rec struct {
			Type string         `json:"type"`
			Data model.Campaign `json:"data"`
		}
		if !strings.Contains(line, `"type":"campaign"`) {
			continue
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if rec.Data.ID == "cmp-004" && rec.Data.Status != model.CampaignEnded {
			t.Errorf("cmp-004 status = %q, want ended", rec.Data.Status)
		}
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
