// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/mela/internal/domain/model"
)

// LifecycleHandler drives the report/start/end/reset transitions.
type LifecycleHandler struct {
	deps Dependencies
}

// NewLifecycleHandler creates a new lifecycle handler.
func NewLifecycleHandler(deps Dependencies) *LifecycleHandler {
	return &LifecycleHandler{deps: deps}
}

type reportRequest struct {
	RegNo string `json:"reg_no"`
}

// HandleReport handles POST /report requests.
func (h *LifecycleHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req reportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RegNo) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.MarkReported(r.Context(), strings.TrimSpace(req.RegNo)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "reported"})
}

type eventRequest struct {
	Event string `json:"event"`
}

// HandleStart handles POST /events/start requests.
func (h *LifecycleHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.StartEvent(r.Context(), strings.TrimSpace(req.Event)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "started"})
}

type endRequest struct {
	// Event may be blank; it is then inferred from the first winner.
	Event   string         `json:"event"`
	Winners map[string]int `json:"winners"`
}

// HandleEnd handles POST /events/end requests.
func (h *LifecycleHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req endRequest
	if !decodeBody(w, r, &req) {
		return
	}
	winners := make(map[string]model.Position, len(req.Winners))
	for regNo, pos := range req.Winners {
		winners[strings.TrimSpace(regNo)] = model.Position(pos)
	}
	if err := h.deps.EndEvent(r.Context(), strings.TrimSpace(req.Event), winners); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ended"})
}

// HandleReset handles POST /events/reset requests.
func (h *LifecycleHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.ResetWinners(r.Context(), strings.TrimSpace(req.Event)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}
