package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

func TestHTTP_Health(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/health", nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decodeJSON[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("health = %v", got)
	}
}

func TestHTTP_SearchCustomersPagination(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")

	rec := doJSON(t, h, "GET", "/v1/customers?page=2&page_size=4", nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[listing.Response[*model.Customer]](t, rec)

	total := 6 + 24
	want := listing.Pagination{
		StartIndex:  4,
		EndIndex:    8,
		TotalItems:  total,
		TotalPages:  (total + 3) / 4,
		CurrentPage: 2,
		PageSize:    4,
	}
	if diff := cmp.Diff(want, resp.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Items) != 4 {
		t.Errorf("got %d items, want 4", len(resp.Items))
	}
	if len(resp.PageNumbers) == 0 || resp.PageNumbers[0] != 1 {
		t.Errorf("page numbers = %v", resp.PageNumbers)
	}
}

func TestHTTP_SearchCustomersQuery(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/customers?q=4872913650", nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[listing.Response[*model.Customer]](t, rec)
	if len(resp.Items) != 1 || resp.Items[0].ID != "cust001" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestHTTP_EmptyPageHasItems(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/customers/cust003/tokens", nil)
	requireStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); !strings.Contains(body, `"items":[]`) {
		t.Errorf("expected an empty items array, got %s", body)
	}
}

func TestHTTP_ListTokensFilters(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default sort", "", []string{"tok004", "tok005", "tok006"}},
		{"status", "?status=Used", []string{"tok006"}},
		{"sort ascending", "?sort=claim_date", []string{"tok006", "tok005", "tok004"}},
		{"sort by name", "?sort=-name", []string{"tok006", "tok005", "tok004"}},
		{"min value", "?min_value=$6", []string{"tok004"}},
		{"search", "?q=cosmetics", []string{"tok005"}},
		{"aip filter", "?filter=" + url.QueryEscape(`state = "Active" AND value = "25%"`), []string{"tok005"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, "GET", "/v1/customers/cust004/tokens"+tt.query, nil)
			requireStatus(t, rec, http.StatusOK)
			resp := decodeJSON[listing.Response[*model.Token]](t, rec)
			if diff := cmp.Diff(tt.want, itemIDs(resp.Items, tokenID)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTTP_CatalogPreset(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")

	// expiring-soon keeps active tokens expiring by 2024-06-22.
	rec := doJSON(t, h, "GET", "/v1/tokens/catalog?preset=expiring-soon", nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[listing.Response[*model.Token]](t, rec)
	if diff := cmp.Diff([]string{"cat005"}, itemIDs(resp.Items, tokenID)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	// An explicit type narrows the preset further.
	rec = doJSON(t, h, "GET", "/v1/tokens/catalog?preset=high-value&type=ExtraBucks&sort=value", nil)
	requireStatus(t, rec, http.StatusOK)
	resp = decodeJSON[listing.Response[*model.Token]](t, rec)
	if diff := cmp.Diff([]string{"cat001"}, itemIDs(resp.Items, tokenID)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTP_ListCampaigns(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")

	rec := doJSON(t, h, "GET", "/v1/campaigns?merchant=cvs&sort=start_date", nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[listing.Response[*model.Campaign]](t, rec)
	if diff := cmp.Diff([]string{"cmp-003", "cmp-001"}, itemIDs(resp.Items, campaignID)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, c := range resp.Items {
		if c.Status == "" {
			t.Errorf("campaign %s has no derived status", c.ID)
		}
	}
}

func TestHTTP_ListAdGroupsFilter(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/ad-groups?filter="+url.QueryEscape("ad_count >= 3"), nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[listing.Response[*model.AdGroup]](t, rec)
	if len(resp.Items) != 1 || resp.Items[0].ID != "adg-001" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestHTTP_ListErrors(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad page", "/v1/ads?page=two", http.StatusBadRequest},
		{"negative page size", "/v1/ads?page_size=-1", http.StatusBadRequest},
		{"bad min value", "/v1/ads?min_value=lots", http.StatusBadRequest},
		{"reversed range", "/v1/ads?from=2024-07-01&to=2024-06-01", http.StatusBadRequest},
		{"bad filter", "/v1/ads?filter=" + url.QueryEscape("budget >"), http.StatusBadRequest},
		{"unknown filter field", "/v1/ads?filter=" + url.QueryEscape("colour = 1"), http.StatusBadRequest},
		{"unknown customer", "/v1/customers/nobody/tokens", http.StatusNotFound},
		{"unknown token", "/v1/tokens/tok999", http.StatusNotFound},
		{"unknown preset kind", "/v1/presets/widgets", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, "GET", tt.path, nil)
			requireStatus(t, rec, tt.want)
			if got := decodeJSON[map[string]any](t, rec); got["error"] == nil {
				t.Errorf("missing error message: %v", got)
			}
		})
	}
}

func TestHTTP_ValidationErrorFields(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/campaigns?from=2024-07-01&to=2024-06-01", nil)
	requireStatus(t, rec, http.StatusBadRequest)
	type errorBody struct {
		Error  string             `json:"error"`
		Fields []model.FieldError `json:"fields"`
	}
	body := decodeJSON[errorBody](t, rec)
	if len(body.Fields) == 0 || body.Fields[0].Field == "" {
		t.Errorf("expected field errors, got %+v", body)
	}
}

func TestHTTP_Presets(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "GET", "/v1/presets/tokens", nil)
	requireStatus(t, rec, http.StatusOK)

	type presetsBody struct {
		Kind    string `json:"kind"`
		Presets []struct {
			Name    string            `json:"name"`
			Filters model.FilterState `json:"filters"`
		} `json:"presets"`
	}
	body := decodeJSON[presetsBody](t, rec)
	if body.Kind != "tokens" {
		t.Errorf("kind = %q", body.Kind)
	}
	var names []string
	for _, p := range body.Presets {
		names = append(names, p.Name)
		if p.Name == "expiring-soon" && p.Filters.DateRange.End.String() != "2024-06-22" {
			t.Errorf("expiring-soon end = %s, want 2024-06-22", p.Filters.DateRange.End)
		}
	}
	want := []string{"active", "expiring-soon", "recently-used", "high-value"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("preset names mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTP_UnknownBodyField(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(t, s.NewHTTPHandler(""), "POST", "/v1/customers", map[string]string{"nickname": "x"})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestAuthMiddleware(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.NewHTTPHandler("secret")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"health is exempt", "/v1/health", "", http.StatusOK},
		{"missing header", "/v1/ads", "", http.StatusUnauthorized},
		{"wrong scheme", "/v1/ads", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "/v1/ads", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/v1/ads", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			requireStatus(t, rec, tt.want)
		})
	}
}

func TestRequestLogger_PassesStatus(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/anything", nil))
	requireStatus(t, rec, http.StatusTeapot)
}
