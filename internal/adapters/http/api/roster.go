// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// RosterHandler reads and edits team rosters.
type RosterHandler struct {
	deps Dependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps Dependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// HandleGetRoster handles GET /roster/{reg_no} requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /roster/
	regNo := strings.TrimPrefix(r.URL.Path, "/roster/")
	if regNo == "" || strings.Contains(regNo, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	names, err := h.deps.GetRoster(r.Context(), regNo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reg_no": regNo, "team": names})
}

type rosterRequest struct {
	RegNo string   `json:"reg_no"`
	Names []string `json:"team"`
}

// HandleSetRoster handles POST /roster requests.
func (h *RosterHandler) HandleSetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rosterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RegNo) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cleaned, err := h.deps.SetRosterOverride(r.Context(), strings.TrimSpace(req.RegNo), req.Names)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reg_no": req.RegNo, "team": cleaned})
}
