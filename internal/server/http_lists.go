package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// splitList splits a comma-separated parameter, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, inputError(name + " must be an integer")
	}
	return n, nil
}

// parseListRequest reads the list query parameters. The preset is
// expanded first; explicit filter parameters then override its
// dimensions.
func (s *KigoServer) parseListRequest(q url.Values, presets *listing.Presets) (model.ListRequest, error) {
	req := model.ListRequest{
		Query:  q.Get("q"),
		Filter: q.Get("filter"),
	}

	var over model.FilterState
	over.Status = splitList(q.Get("status"))
	over.Types = splitList(q.Get("type"))
	if v := q.Get("from"); v != "" {
		over.DateRange.Start = model.ParseDate(v)
	}
	if v := q.Get("to"); v != "" {
		over.DateRange.End = model.ParseDate(v)
	}
	over.FieldText = q.Get("merchant")
	if v := q.Get("min_value"); v != "" {
		d, err := decimal.NewFromString(strings.TrimPrefix(v, "$"))
		if err != nil {
			return req, inputError("min_value must be a number")
		}
		over.MinValue = &d
	}
	req.Filters = s.withPreset(presets, q.Get("preset"), over)

	sort, err := listing.ParseSort(q.Get("sort"))
	if err != nil {
		return req, inputError(err.Error())
	}
	req.Sort = sort

	if req.Pagination.CurrentPage, err = intParam(q, "page"); err != nil {
		return req, err
	}
	if req.Pagination.PageSize, err = intParam(q, "page_size"); err != nil {
		return req, err
	}
	return req, nil
}

// serveList parses the list parameters, runs fn and writes the page.
func serveList[T any](s *KigoServer, w http.ResponseWriter, r *http.Request, presets *listing.Presets, fn func(context.Context, model.ListRequest) (listing.Page[T], error)) {
	req, err := s.parseListRequest(r.URL.Query(), presets)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	page, err := list(s, r.Context(), req, fn)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing.NewResponse(page))
}

// serveGet writes the record fn finds for the {id} path value.
func serveGet[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (T, error)) {
	v, err := fn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSearchCustomers handles GET /v1/customers.
func (s *KigoServer) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	serveList(s, w, r, nil, s.store.SearchCustomers)
}

// handleGetCustomer handles GET /v1/customers/{id}.
func (s *KigoServer) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, s.store.GetCustomer)
}

// handleListTokens handles GET /v1/customers/{id}/tokens.
func (s *KigoServer) handleListTokens(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	serveList(s, w, r, listing.TokenPresets, func(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error) {
		return s.store.ListTokens(ctx, id, req)
	})
}

// handleListCatalog handles GET /v1/tokens/catalog.
func (s *KigoServer) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	serveList(s, w, r, listing.TokenPresets, s.store.ListCatalog)
}

// handleGetToken handles GET /v1/tokens/{id}.
func (s *KigoServer) handleGetToken(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, s.store.GetToken)
}

// handleListAds handles GET /v1/ads.
func (s *KigoServer) handleListAds(w http.ResponseWriter, r *http.Request) {
	serveList(s, w, r, listing.AdPresets, s.store.ListAds)
}

// handleGetAd handles GET /v1/ads/{id}.
func (s *KigoServer) handleGetAd(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, s.store.GetAd)
}

// handleListAdGroups handles GET /v1/ad-groups.
func (s *KigoServer) handleListAdGroups(w http.ResponseWriter, r *http.Request) {
	serveList(s, w, r, listing.AdGroupPresets, s.store.ListAdGroups)
}

// handleGetAdGroup handles GET /v1/ad-groups/{id}.
func (s *KigoServer) handleGetAdGroup(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, s.store.GetAdGroup)
}

// handleListCampaigns handles GET /v1/campaigns.
func (s *KigoServer) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	serveList(s, w, r, listing.CampaignPresets, s.store.ListCampaigns)
}

// handleGetCampaign handles GET /v1/campaigns/{id}.
func (s *KigoServer) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, s.store.GetCampaign)
}

// handleListPresets handles GET /v1/presets/{kind}.
func (s *KigoServer) handleListPresets(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	presets := presetsFor(kind)
	if presets == nil {
		writeError(w, http.StatusNotFound, "no presets for "+kind)
		return
	}
	type presetJSON struct {
		listing.Preset
		Filters model.FilterState `json:"filters"`
	}
	now := s.opts.Now()
	out := []presetJSON{}
	for _, p := range presets.List() {
		out = append(out, presetJSON{Preset: p, Filters: p.Filters(now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "presets": out})
}

// handleListEvents handles GET /v1/events?entity_id=.
func (s *KigoServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	evts, err := s.store.ListEvents(r.Context(), r.URL.Query().Get("entity_id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
