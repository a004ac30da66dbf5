// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// RatingsHandler serves event star ratings and team size requirements.
type RatingsHandler struct {
	deps Dependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps Dependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

type ratingRequest struct {
	Event  string `json:"event"`
	Rating int    `json:"rating"`
}

// HandleRatings handles GET and POST /ratings requests.
func (h *RatingsHandler) HandleRatings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ratings, err := h.deps.GetRatings(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ratings)
	case http.MethodPost:
		var req ratingRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Event) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if err := h.deps.SetRating(r.Context(), strings.TrimSpace(req.Event), req.Rating); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	default:
		http.NotFound(w, r)
	}
}

// HandleRequirements handles GET /requirements?event= requests.
func (h *RatingsHandler) HandleRequirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	event := strings.TrimSpace(r.URL.Query().Get("event"))
	if event == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	req := h.deps.GetRequirements(r.Context(), event)
	writeJSON(w, http.StatusOK, map[string]any{"event": event, "min": req.Min, "max": req.Max})
}
