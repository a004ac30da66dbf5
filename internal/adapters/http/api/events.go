// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// EventsHandler serves derived event state and the championship table.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleListEvents handles GET /events requests.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	events, err := h.deps.ListEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// HandleAggregate handles GET /events/aggregate?event= requests.
func (h *EventsHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	event := strings.TrimSpace(r.URL.Query().Get("event"))
	if event == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	agg, err := h.deps.GetEventAggregate(r.Context(), event)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// HandleAggregates handles GET /events/aggregates requests.
func (h *EventsHandler) HandleAggregates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all, err := h.deps.GetAllAggregates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleStandings handles GET /standings requests.
func (h *EventsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, err := h.deps.GetChampionStandings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": table})
}

// HandleReportedTeams handles GET /events/reported?event= requests.
func (h *EventsHandler) HandleReportedTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	event := strings.TrimSpace(r.URL.Query().Get("event"))
	if event == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	teams, started, err := h.deps.ReportedTeams(r.Context(), event)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":   event,
		"started": started,
		"teams":   teams,
	})
}

// HandleCompleted handles GET /events/completed requests.
func (h *EventsHandler) HandleCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	done, err := h.deps.CompletedEntries(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}
