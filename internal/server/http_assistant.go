package server

import (
	"net/http"

	"github.com/kigopro/kigo/internal/assistant"
)

// handleCreateSession handles POST /v1/assistant/sessions. The body names
// the partner program the session drafts campaigns for.
func (s *KigoServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var owner assistant.Owner
	if err := decodeBody(r, &owner); err != nil {
		writeErr(w, r, err)
		return
	}
	if owner.PartnerID == "" || owner.ProgramID == "" {
		writeErr(w, r, inputError("partner_id and program_id are required"))
		return
	}
	writeJSON(w, http.StatusCreated, s.Assistant.Create(owner))
}

// handleListSessions handles GET /v1/assistant/sessions.
func (s *KigoServer) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.Assistant.List()})
}

// handleGetSession handles GET /v1/assistant/sessions/{id}.
func (s *KigoServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Assistant.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSessionEvent handles POST /v1/assistant/sessions/{id}/events.
// Rejected events answer with the error and the unchanged session.
func (s *KigoServer) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	var ev assistant.Event
	if err := decodeBody(r, &ev); err != nil {
		writeErr(w, r, err)
		return
	}
	snap, err := s.Assistant.Dispatch(r.Context(), r.PathValue("id"), ev)
	if err != nil {
		code := httpStatus(err)
		if code == http.StatusNotFound || code == http.StatusInternalServerError {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, code, map[string]any{"error": err.Error(), "session": snap})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
