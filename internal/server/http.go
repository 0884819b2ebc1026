package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *KigoServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	mux.HandleFunc("GET /v1/customers", s.handleSearchCustomers)
	mux.HandleFunc("POST /v1/customers", s.handleCreateCustomer)
	mux.HandleFunc("GET /v1/customers/{id}", s.handleGetCustomer)
	mux.HandleFunc("GET /v1/customers/{id}/tokens", s.handleListTokens)

	mux.HandleFunc("GET /v1/tokens/catalog", s.handleListCatalog)
	mux.HandleFunc("POST /v1/tokens", s.handleCreateToken)
	mux.HandleFunc("GET /v1/tokens/{id}", s.handleGetToken)
	mux.HandleFunc("POST /v1/tokens/{id}/reissue", s.handleReissueToken)
	mux.HandleFunc("POST /v1/tokens/{id}/dispute", s.handleDisputeToken)

	mux.HandleFunc("GET /v1/ads", s.handleListAds)
	mux.HandleFunc("GET /v1/ads/{id}", s.handleGetAd)
	mux.HandleFunc("PATCH /v1/ads/{id}", s.handleUpdateAd)

	mux.HandleFunc("GET /v1/ad-groups", s.handleListAdGroups)
	mux.HandleFunc("POST /v1/ad-groups", s.handleCreateAdGroup)
	mux.HandleFunc("GET /v1/ad-groups/{id}", s.handleGetAdGroup)
	mux.HandleFunc("PATCH /v1/ad-groups/{id}", s.handleUpdateAdGroup)

	mux.HandleFunc("GET /v1/campaigns", s.handleListCampaigns)
	mux.HandleFunc("POST /v1/campaigns", s.handleCreateCampaign)
	mux.HandleFunc("GET /v1/campaigns/{id}", s.handleGetCampaign)
	mux.HandleFunc("PATCH /v1/campaigns/{id}", s.handleUpdateCampaign)

	mux.HandleFunc("GET /v1/presets/{kind}", s.handleListPresets)

	mux.HandleFunc("POST /v1/assistant/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/assistant/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v1/assistant/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /v1/assistant/sessions/{id}/events", s.handleSessionEvent)

	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *KigoServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return inputError("invalid JSON body: " + err.Error())
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
