// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/okian/mela/internal/domain/model"
)

// RegistrationsHandler serves spreadsheet lookups, spot registrations, and
// the column mapping.
type RegistrationsHandler struct {
	deps Dependencies
}

// NewRegistrationsHandler creates a new registrations handler.
func NewRegistrationsHandler(deps Dependencies) *RegistrationsHandler {
	return &RegistrationsHandler{deps: deps}
}

type lookupRequest struct {
	RegNo string `json:"reg_no"`
}

// HandleLookup handles POST /registrations/lookup requests.
func (h *RegistrationsHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req lookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RegNo) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	reg, err := h.deps.LookupRegistration(r.Context(), strings.TrimSpace(req.RegNo))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

type spotRequest struct {
	RegNo   string   `json:"reg_no"`
	Event   string   `json:"event"`
	College string   `json:"college"`
	Contact string   `json:"contact"`
	Email   string   `json:"email"`
	Leader  string   `json:"leader"`
	Members []string `json:"members"`
}

// HandleSpotRegister handles POST /registrations requests.
func (h *RegistrationsHandler) HandleSpotRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req spotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reg, err := h.deps.SpotRegister(r.Context(), model.Registration{
		RegNo:   req.RegNo,
		Event:   req.Event,
		College: req.College,
		Contact: req.Contact,
		Email:   req.Email,
		Leader:  req.Leader,
		Members: req.Members,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// HandleColumns handles GET and POST /columns requests: the spreadsheet
// header row and the stored column mapping.
func (h *RegistrationsHandler) HandleColumns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cols, err := h.deps.GetColumns(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := map[string]any{"columns": cols}
		if mapping, err := h.deps.GetColumnMap(r.Context()); err == nil {
			resp["mapping"] = mapping
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var mapping model.ColumnMap
		if !decodeBody(w, r, &mapping) {
			return
		}
		if err := h.deps.SetColumnMap(r.Context(), mapping); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	default:
		http.NotFound(w, r)
	}
}
