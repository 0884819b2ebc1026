package server

import (
	"net/http"

	"github.com/kigopro/kigo/internal/model"
)

// handleCreateCustomer handles POST /v1/customers.
func (s *KigoServer) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c model.Customer
	if err := decodeBody(r, &c); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.createCustomer(r.Context(), &c); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &c)
}

// handleCreateToken handles POST /v1/tokens.
func (s *KigoServer) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var t model.Token
	if err := decodeBody(r, &t); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.createToken(r.Context(), &t); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &t)
}

// handleReissueToken handles POST /v1/tokens/{id}/reissue.
func (s *KigoServer) handleReissueToken(w http.ResponseWriter, r *http.Request) {
	var in supportInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	orig, repl, err := s.reissueToken(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.Token{"original": orig, "replacement": repl})
}

// handleDisputeToken handles POST /v1/tokens/{id}/dispute.
func (s *KigoServer) handleDisputeToken(w http.ResponseWriter, r *http.Request) {
	var in supportInput
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	t, err := s.disputeToken(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpdateAd handles PATCH /v1/ads/{id}.
func (s *KigoServer) handleUpdateAd(w http.ResponseWriter, r *http.Request) {
	var p adPatch
	if err := decodeBody(r, &p); err != nil {
		writeErr(w, r, err)
		return
	}
	a, err := s.updateAd(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCreateAdGroup handles POST /v1/ad-groups.
func (s *KigoServer) handleCreateAdGroup(w http.ResponseWriter, r *http.Request) {
	var g model.AdGroup
	if err := decodeBody(r, &g); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.createAdGroup(r.Context(), &g); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &g)
}

// handleUpdateAdGroup handles PATCH /v1/ad-groups/{id}.
func (s *KigoServer) handleUpdateAdGroup(w http.ResponseWriter, r *http.Request) {
	var p adGroupPatch
	if err := decodeBody(r, &p); err != nil {
		writeErr(w, r, err)
		return
	}
	g, err := s.updateAdGroup(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleCreateCampaign handles POST /v1/campaigns.
func (s *KigoServer) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c model.Campaign
	if err := decodeBody(r, &c); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.createCampaign(r.Context(), &c); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &c)
}

// handleUpdateCampaign handles PATCH /v1/campaigns/{id}.
func (s *KigoServer) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var p campaignPatch
	if err := decodeBody(r, &p); err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := s.updateCampaign(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
