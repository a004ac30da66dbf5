// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// CodesHandler manages per-event coordinator access codes.
type CodesHandler struct {
	deps Dependencies
}

// NewCodesHandler creates a new codes handler.
func NewCodesHandler(deps Dependencies) *CodesHandler {
	return &CodesHandler{deps: deps}
}

type codeRequest struct {
	Event string `json:"event"`
	Code  string `json:"code"`
}

// HandleVerify handles POST /codes/verify requests.
func (h *CodesHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Event) == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	ok, configured, err := h.deps.VerifyEventCode(r.Context(), strings.TrimSpace(req.Event), strings.TrimSpace(req.Code))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": ok, "configured": configured})
}

// HandleSetCode handles POST /codes requests.
func (h *CodesHandler) HandleSetCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.SetEventCode(r.Context(), strings.TrimSpace(req.Event), strings.TrimSpace(req.Code)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleInit handles POST /codes/init requests. The generated codes are
// returned once; afterwards they are only verifiable, not readable.
func (h *CodesHandler) HandleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	generated, err := h.deps.InitEventCodes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"generated": generated})
}
