// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/scoring"
	"github.com/okian/mela/internal/lifecycle"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Lifecycle transitions.
	MarkReported(ctx context.Context, regNo string) error
	StartEvent(ctx context.Context, event string) error
	EndEvent(ctx context.Context, event string, winners map[string]model.Position) error
	ResetWinners(ctx context.Context, event string) error

	// Registration source reads and writes.
	LookupRegistration(ctx context.Context, regNo string) (model.Registration, error)
	SpotRegister(ctx context.Context, reg model.Registration) (model.Registration, error)
	GetColumns(ctx context.Context) ([]string, error)
	GetColumnMap(ctx context.Context) (model.ColumnMap, error)
	SetColumnMap(ctx context.Context, m model.ColumnMap) error

	// Rosters.
	GetRoster(ctx context.Context, regNo string) ([]string, error)
	SetRosterOverride(ctx context.Context, regNo string, names []string) ([]string, error)

	// Derived event state.
	ListEvents(ctx context.Context) ([]string, error)
	GetEventAggregate(ctx context.Context, event string) (model.EventAggregate, error)
	GetAllAggregates(ctx context.Context) (map[string]model.EventAggregate, error)
	GetChampionStandings(ctx context.Context) ([]model.CollegeStanding, error)
	ReportedTeams(ctx context.Context, event string) ([]lifecycle.ReportedTeam, bool, error)
	CompletedEntries(ctx context.Context) (map[string]lifecycle.CompletedEntry, error)

	// Ratings, requirements, and access codes.
	GetRatings(ctx context.Context) (map[string]int, error)
	GetRating(ctx context.Context, event string) (int, error)
	SetRating(ctx context.Context, event string, rating int) error
	GetRequirements(ctx context.Context, event string) scoring.TeamRequirement
	VerifyEventCode(ctx context.Context, event, code string) (ok, configured bool, err error)
	SetEventCode(ctx context.Context, event, code string) error
	InitEventCodes(ctx context.Context) (map[string]string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	lifecycleHandler     *LifecycleHandler
	rosterHandler        *RosterHandler
	eventsHandler        *EventsHandler
	ratingsHandler       *RatingsHandler
	codesHandler         *CodesHandler
	registrationsHandler *RegistrationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		lifecycleHandler:     NewLifecycleHandler(deps),
		rosterHandler:        NewRosterHandler(deps),
		eventsHandler:        NewEventsHandler(deps),
		ratingsHandler:       NewRatingsHandler(deps),
		codesHandler:         NewCodesHandler(deps),
		registrationsHandler: NewRegistrationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/report", MetricsMiddleware(s.lifecycleHandler.HandleReport, "report"))
	mux.HandleFunc("/events/start", MetricsMiddleware(s.lifecycleHandler.HandleStart, "events_start"))
	mux.HandleFunc("/events/end", MetricsMiddleware(s.lifecycleHandler.HandleEnd, "events_end"))
	mux.HandleFunc("/events/reset", MetricsMiddleware(s.lifecycleHandler.HandleReset, "events_reset"))

	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events"))
	mux.HandleFunc("/events/aggregate", MetricsMiddleware(s.eventsHandler.HandleAggregate, "events_aggregate"))
	mux.HandleFunc("/events/aggregates", MetricsMiddleware(s.eventsHandler.HandleAggregates, "events_aggregates"))
	mux.HandleFunc("/events/reported", MetricsMiddleware(s.eventsHandler.HandleReportedTeams, "events_reported"))
	mux.HandleFunc("/events/completed", MetricsMiddleware(s.eventsHandler.HandleCompleted, "events_completed"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.eventsHandler.HandleStandings, "standings"))

	mux.HandleFunc("/roster", MetricsMiddleware(s.rosterHandler.HandleSetRoster, "roster"))
	mux.HandleFunc("/roster/", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster_get"))

	mux.HandleFunc("/ratings", MetricsMiddleware(s.ratingsHandler.HandleRatings, "ratings"))
	mux.HandleFunc("/requirements", MetricsMiddleware(s.ratingsHandler.HandleRequirements, "requirements"))

	mux.HandleFunc("/codes", MetricsMiddleware(s.codesHandler.HandleSetCode, "codes"))
	mux.HandleFunc("/codes/verify", MetricsMiddleware(s.codesHandler.HandleVerify, "codes_verify"))
	mux.HandleFunc("/codes/init", MetricsMiddleware(s.codesHandler.HandleInit, "codes_init"))

	mux.HandleFunc("/registrations", MetricsMiddleware(s.registrationsHandler.HandleSpotRegister, "registrations"))
	mux.HandleFunc("/registrations/lookup", MetricsMiddleware(s.registrationsHandler.HandleLookup, "registrations_lookup"))
	mux.HandleFunc("/columns", MetricsMiddleware(s.registrationsHandler.HandleColumns, "columns"))
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates a domain error into its HTTP shape.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	writeError(w, status, code, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return false
	}
	return true
}
