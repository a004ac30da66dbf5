// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mela/internal/adapters/registry"
	"github.com/okian/mela/internal/adapters/statestore"
	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/roster"
	"github.com/okian/mela/internal/domain/scoring"
	"github.com/okian/mela/internal/domain/standings"
	"github.com/okian/mela/internal/lifecycle"
	"github.com/okian/mela/pkg/logger"
	"github.com/okian/mela/pkg/metrics"
)

// Service implements the API dependencies for the fest coordination system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   statestore.Store
	ratings *statestore.RatingStore
	codes   *statestore.CodeStore
	source  *registry.Source
	engine  *lifecycle.Engine

	// Configuration
	dataDir           string
	registrationsPath string
	statusPath        string
	ratingsPath       string
	codesPath         string
	mappingPath       string
	lockTimeout       time.Duration
	sourceCacheTTL    time.Duration
	defaultCodes      map[string]string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory holding the state documents.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithRegistrationsFile sets the spreadsheet and column mapping paths.
func WithRegistrationsFile(path, mappingPath string) Option {
	return func(s *Service) {
		if path != "" {
			s.registrationsPath = path
		}
		if mappingPath != "" {
			s.mappingPath = mappingPath
		}
	}
}

// WithStatePaths overrides the DataDir-derived document locations.
func WithStatePaths(status, ratings, codes string) Option {
	return func(s *Service) {
		if status != "" {
			s.statusPath = status
		}
		if ratings != "" {
			s.ratingsPath = ratings
		}
		if codes != "" {
			s.codesPath = codes
		}
	}
}

// WithLockTimeout bounds how long writers wait for the file lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// WithSourceCacheTTL bounds the spreadsheet snapshot cache lifetime.
func WithSourceCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sourceCacheTTL = ttl
		}
	}
}

// WithDefaultCodes seeds per-event access codes; stored codes win.
func WithDefaultCodes(codes map[string]string) Option {
	return func(s *Service) {
		s.defaultCodes = codes
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:           "data",
		registrationsPath: filepath.Join("data", "registrations.xlsx"),
		lockTimeout:       5 * time.Second,
		sourceCacheTTL:    30 * time.Second,
		defaultCodes:      map[string]string{},
		logger:            nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting fest service...")

	statusPath := s.statusPath
	if statusPath == "" {
		statusPath = filepath.Join(s.dataDir, "event_status.json")
	}
	ratingsPath := s.ratingsPath
	if ratingsPath == "" {
		ratingsPath = filepath.Join(s.dataDir, "event_ratings.json")
	}
	codesPath := s.codesPath
	if codesPath == "" {
		codesPath = filepath.Join(s.dataDir, "event_codes.json")
	}
	mappingPath := s.mappingPath
	if mappingPath == "" {
		mappingPath = filepath.Join(s.dataDir, "column_map.json")
	}

	storeOpts := []statestore.Option{
		statestore.WithLockTimeout(s.lockTimeout),
		statestore.WithLogger(s.logger.Named("statestore")),
	}
	s.store = statestore.NewFileStore(statusPath, storeOpts...)
	s.ratings = statestore.NewRatingStore(ratingsPath, storeOpts...)
	s.codes = statestore.NewCodeStore(codesPath, s.defaultCodes, storeOpts...)
	s.source = registry.New(s.registrationsPath, mappingPath,
		registry.WithCacheTTL(s.sourceCacheTTL),
		registry.WithLockTimeout(s.lockTimeout),
		registry.WithLogger(s.logger.Named("registry")),
	)
	s.engine = lifecycle.New(s.store, s.source, s.ratings)

	s.started = true
	s.logger.Info(ctx, "fest service started",
		logger.String("status", statusPath),
		logger.String("registrations", s.registrationsPath),
	)

	return nil
}

// Stop shuts down the service. State lives in files, so there is nothing to
// flush; the flag just fences late calls.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "fest service stopped")
}

// MarkReported records that a registration's team reported at the desk.
func (s *Service) MarkReported(ctx context.Context, regNo string) error {
	err := s.engine.MarkReported(ctx, regNo)
	metrics.RecordTransition("report", outcome(err))
	return err
}

// StartEvent marks an event's reported teams as started.
func (s *Service) StartEvent(ctx context.Context, event string) error {
	err := s.engine.StartEvent(ctx, event)
	metrics.RecordTransition("start", outcome(err))
	return err
}

// EndEvent finalizes an event with its winners.
func (s *Service) EndEvent(ctx context.Context, event string, winners map[string]model.Position) error {
	err := s.engine.EndEvent(ctx, event, winners)
	metrics.RecordTransition("end", outcome(err))
	return err
}

// ResetWinners clears an event's finalized result.
func (s *Service) ResetWinners(ctx context.Context, event string) error {
	err := s.engine.ResetWinners(ctx, event)
	metrics.RecordTransition("reset", outcome(err))
	return err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// LookupRegistration returns the source row for a registration number.
func (s *Service) LookupRegistration(ctx context.Context, regNo string) (model.Registration, error) {
	return s.source.Lookup(ctx, regNo)
}

// GetRoster resolves the authoritative roster for a registration.
func (s *Service) GetRoster(ctx context.Context, regNo string) ([]string, error) {
	reg, err := s.source.Lookup(ctx, regNo)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	var override []string
	if st := doc[regNo]; st != nil {
		override = st.RosterOverride
	}
	return roster.Resolve(reg, override), nil
}

// SetRosterOverride validates and persists a manual roster, then attempts to
// write it back into the spreadsheet. The override is authoritative once the
// transaction commits; write-back failure is logged, not returned.
func (s *Service) SetRosterOverride(ctx context.Context, regNo string, names []string) ([]string, error) {
	cleaned, err := roster.ValidateOverride(names)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	reg, err := s.source.Lookup(ctx, regNo)
	if err != nil {
		return nil, err
	}

	_, err = s.store.Transact(ctx, func(doc model.StatusDoc) (model.StatusDoc, error) {
		st := doc[regNo]
		if st == nil {
			st = &model.RegistrationStatus{Event: reg.Event}
			doc[regNo] = st
		}
		st.RosterOverride = cleaned
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.source.ApplyRosterEdit(ctx, regNo, cleaned); err != nil {
		s.logger.Warn(ctx, "roster write-back failed",
			logger.String("regNo", regNo),
			logger.Error(err),
		)
	}
	return cleaned, nil
}

// GetEventAggregate returns the derived state of one event.
func (s *Service) GetEventAggregate(ctx context.Context, event string) (model.EventAggregate, error) {
	return s.engine.Aggregate(ctx, event)
}

// GetAllAggregates returns the derived state of every tracked event.
func (s *Service) GetAllAggregates(ctx context.Context) (map[string]model.EventAggregate, error) {
	return s.engine.AggregateAll(ctx)
}

// GetChampionStandings computes the championship table from the current
// status snapshot.
func (s *Service) GetChampionStandings(ctx context.Context) ([]model.CollegeStanding, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.All(ctx)
	if err != nil {
		return nil, err
	}
	regs, err := s.source.All(ctx)
	if err != nil {
		return nil, err
	}
	colleges := make(map[string]string, len(regs))
	for _, reg := range regs {
		colleges[reg.RegNo] = reg.College
	}
	return standings.Calculate(doc, ratings, func(regNo string) string {
		return colleges[regNo]
	}), nil
}

// ListEvents returns the event names present in the registration source.
func (s *Service) ListEvents(ctx context.Context) ([]string, error) {
	return s.source.ListEvents(ctx)
}

// ReportedTeams lists an event's reported teams and whether it has started.
func (s *Service) ReportedTeams(ctx context.Context, event string) ([]lifecycle.ReportedTeam, bool, error) {
	return s.engine.ReportedTeams(ctx, event)
}

// CompletedEntries returns every finalized registration.
func (s *Service) CompletedEntries(ctx context.Context) (map[string]lifecycle.CompletedEntry, error) {
	return s.engine.CompletedEntries(ctx)
}

// GetRating returns an event's star rating, defaulted when unset.
func (s *Service) GetRating(ctx context.Context, event string) (int, error) {
	return s.ratings.Get(ctx, event)
}

// GetRatings returns every stored rating.
func (s *Service) GetRatings(ctx context.Context) (map[string]int, error) {
	return s.ratings.All(ctx)
}

// SetRating stores an event's star rating.
func (s *Service) SetRating(ctx context.Context, event string, rating int) error {
	return s.ratings.Set(ctx, event, rating)
}

// GetRequirements returns the team size rules for an event.
func (s *Service) GetRequirements(_ context.Context, event string) scoring.TeamRequirement {
	return scoring.Requirements(event)
}

// VerifyEventCode checks a coordinator's access code for an event.
// The second result is false when the event has no code configured.
func (s *Service) VerifyEventCode(ctx context.Context, event, code string) (ok, configured bool, err error) {
	return s.codes.Verify(ctx, event, code)
}

// SetEventCode stores an access code for an event.
func (s *Service) SetEventCode(ctx context.Context, event, code string) error {
	return s.codes.Set(ctx, event, code)
}

// InitEventCodes generates codes for source events that lack one and returns
// only the newly generated codes.
func (s *Service) InitEventCodes(ctx context.Context) (map[string]string, error) {
	events, err := s.source.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return s.codes.Init(ctx, events)
}

// SpotRegister validates and appends an on-the-spot registration. A missing
// registration number gets a generated identifier, returned on the result.
func (s *Service) SpotRegister(ctx context.Context, reg model.Registration) (model.Registration, error) {
	reg.Event = strings.TrimSpace(reg.Event)
	reg.College = strings.TrimSpace(reg.College)
	reg.Contact = strings.TrimSpace(reg.Contact)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Leader = strings.TrimSpace(reg.Leader)
	reg.RegNo = strings.TrimSpace(reg.RegNo)

	if reg.Event == "" {
		return model.Registration{}, fmt.Errorf("%w: event is required", ErrValidation)
	}
	if reg.College == "" {
		return model.Registration{}, fmt.Errorf("%w: college is required", ErrValidation)
	}
	if reg.Contact == "" {
		return model.Registration{}, fmt.Errorf("%w: contact is required", ErrValidation)
	}
	if reg.Email == "" {
		return model.Registration{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	req := scoring.Requirements(reg.Event)
	team := roster.Normalize(append([]string{reg.Leader}, reg.Members...))
	if req.TeamEvent() && reg.Leader == "" {
		return model.Registration{}, fmt.Errorf("%w: team events require a leader", ErrValidation)
	}
	if len(team) < req.Min || len(team) > req.Max {
		return model.Registration{}, fmt.Errorf("%w: team size %d outside [%d, %d] for %s",
			ErrValidation, len(team), req.Min, req.Max, reg.Event)
	}

	if reg.RegNo == "" {
		reg.RegNo = "SPOT-" + strings.ToUpper(uuid.NewString()[:8])
	}

	if err := s.source.Append(ctx, reg); err != nil {
		return model.Registration{}, err
	}
	s.logger.Info(ctx, "spot registration added",
		logger.String("regNo", reg.RegNo),
		logger.String("event", reg.Event),
	)
	return reg, nil
}

// GetColumns returns the spreadsheet header row.
func (s *Service) GetColumns(ctx context.Context) ([]string, error) {
	return s.source.Columns(ctx)
}

// GetColumnMap returns the stored column mapping.
func (s *Service) GetColumnMap(ctx context.Context) (model.ColumnMap, error) {
	return s.source.Mapping(ctx)
}

// SetColumnMap stores the spreadsheet column mapping.
func (s *Service) SetColumnMap(ctx context.Context, m model.ColumnMap) error {
	return s.source.SetMapping(ctx, m)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.started {
		if doc, err := s.store.Read(ctx); err == nil {
			reported, ended := 0, 0
			for _, st := range doc {
				if st == nil {
					continue
				}
				if st.Reported {
					reported++
				}
				if st.EventEnded {
					ended++
				}
			}
			stats["statusEntries"] = len(doc)
			stats["reportedEntries"] = reported
			stats["endedEntries"] = ended
			metrics.UpdateStatusEntries(len(doc))
		}
		if events, err := s.source.ListEvents(ctx); err == nil {
			stats["events"] = len(events)
		}
	}

	return stats
}
