// Package lifecycle drives each event through reported, started, and ended
// states.
//
// Per-registration state lives in the status store; per-event state is
// derived by folding the entries that share an event name. Every mutation
// here is one store transaction, so precondition checks and their effects
// are atomic with respect to concurrent callers.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/okian/mela/internal/adapters/statestore"
	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/roster"
	"github.com/okian/mela/internal/domain/scoring"
)

// Ratings reads event star ratings.
type Ratings interface {
	All(ctx context.Context) (map[string]int, error)
	Get(ctx context.Context, event string) (int, error)
}

// SourceReader is the slice of the registration source the lifecycle needs.
type SourceReader interface {
	Lookup(ctx context.Context, regNo string) (model.Registration, error)
}

// Engine applies lifecycle transitions and derives event aggregates.
type Engine struct {
	store   statestore.Store
	source  SourceReader
	ratings Ratings
}

// New creates a lifecycle engine.
func New(store statestore.Store, source SourceReader, ratings Ratings) *Engine {
	return &Engine{store: store, source: source, ratings: ratings}
}

// eventEnded reports whether any entry for event carries a finalized result.
func eventEnded(doc model.StatusDoc, event string) bool {
	for _, st := range doc {
		if st != nil && st.Event == event && st.EventEnded {
			return true
		}
	}
	return false
}

// MarkReported records that the registration's team arrived at the desk.
// The entry is created lazily on first report. Reporting is idempotent and
// blocked once the registration's event has a finalized result.
func (e *Engine) MarkReported(ctx context.Context, regNo string) error {
	reg, err := e.source.Lookup(ctx, regNo)
	if err != nil {
		return err
	}

	_, err = e.store.Transact(ctx, func(doc model.StatusDoc) (model.StatusDoc, error) {
		if eventEnded(doc, reg.Event) {
			return nil, fmt.Errorf("%w: %s", ErrEventLocked, reg.Event)
		}
		st := doc[regNo]
		if st == nil {
			st = &model.RegistrationStatus{}
			doc[regNo] = st
		}
		st.Event = reg.Event
		st.Reported = true
		st.EventStarted = false
		st.EventEnded = false
		st.Position = nil
		return doc, nil
	})
	return err
}

// StartEvent marks every reported entry of the event as started. Starting
// an event with no entries is a no-op; it never creates phantom entries.
func (e *Engine) StartEvent(ctx context.Context, event string) error {
	_, err := e.store.Transact(ctx, func(doc model.StatusDoc) (model.StatusDoc, error) {
		if eventEnded(doc, event) {
			return nil, fmt.Errorf("%w: %s", ErrEventLocked, event)
		}
		for _, st := range doc {
			if st != nil && st.Event == event {
				st.EventStarted = true
			}
		}
		return doc, nil
	})
	return err
}

// EndEvent finalizes an event, recording one position per winning
// registration. The event may be passed explicitly or inferred from the
// first winner's status entry. Each position may be assigned at most once.
func (e *Engine) EndEvent(ctx context.Context, event string, winners map[string]model.Position) error {
	if len(winners) == 0 {
		return fmt.Errorf("%w: no winners selected", ErrInvalidWinnerData)
	}
	seen := map[model.Position]string{}
	for regNo, pos := range winners {
		if !pos.Valid() {
			return fmt.Errorf("%w: position %d for %s", ErrInvalidWinnerData, pos, regNo)
		}
		if other, dup := seen[pos]; dup {
			return fmt.Errorf("%w: position %d assigned to both %s and %s", ErrInvalidWinnerData, pos, other, regNo)
		}
		seen[pos] = regNo
	}

	_, err := e.store.Transact(ctx, func(doc model.StatusDoc) (model.StatusDoc, error) {
		resolved := event
		if resolved == "" {
			for regNo := range winners {
				st := doc[regNo]
				if st == nil || st.Event == "" {
					return nil, fmt.Errorf("%w: cannot infer event from %s", ErrInvalidWinnerData, regNo)
				}
				resolved = st.Event
				break
			}
		}
		if eventEnded(doc, resolved) {
			return nil, fmt.Errorf("%w: %s", ErrEventLocked, resolved)
		}

		for regNo := range winners {
			st := doc[regNo]
			if st == nil {
				return nil, fmt.Errorf("%w: %s has no status entry", ErrInvalidWinnerData, regNo)
			}
			if st.Event != resolved {
				return nil, fmt.Errorf("%w: %s belongs to event %q", ErrInvalidWinnerData, regNo, st.Event)
			}
		}
		for regNo, pos := range winners {
			p := pos
			st := doc[regNo]
			st.EventEnded = true
			st.Position = &p
		}
		return doc, nil
	})
	return err
}

// ResetWinners clears the finalized result of an event, re-opening it for a
// fresh EndEvent.
func (e *Engine) ResetWinners(ctx context.Context, event string) error {
	_, err := e.store.Transact(ctx, func(doc model.StatusDoc) (model.StatusDoc, error) {
		matched := false
		for _, st := range doc {
			if st != nil && st.Event == event && st.EventEnded {
				st.EventEnded = false
				st.Position = nil
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: %s", ErrNothingToReset, event)
		}
		return doc, nil
	})
	return err
}

// Aggregate folds the status entries of one event into its derived state,
// joining winners against the registration source for roster and college.
func (e *Engine) Aggregate(ctx context.Context, event string) (model.EventAggregate, error) {
	doc, err := e.store.Read(ctx)
	if err != nil {
		return model.EventAggregate{}, err
	}
	rating, err := e.ratings.Get(ctx, event)
	if err != nil {
		return model.EventAggregate{}, err
	}
	return e.fold(ctx, doc, event, rating), nil
}

// AggregateAll derives the state of every event present in the status
// document.
func (e *Engine) AggregateAll(ctx context.Context) (map[string]model.EventAggregate, error) {
	doc, err := e.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := e.ratings.All(ctx)
	if err != nil {
		return nil, err
	}

	out := map[string]model.EventAggregate{}
	for _, st := range doc {
		if st == nil || st.Event == "" {
			continue
		}
		if _, ok := out[st.Event]; ok {
			continue
		}
		rating := scoring.DefaultRating
		if r, ok := ratings[st.Event]; ok {
			rating = scoring.ClampRating(r)
		}
		out[st.Event] = e.fold(ctx, doc, st.Event, rating)
	}
	return out, nil
}

func (e *Engine) fold(ctx context.Context, doc model.StatusDoc, event string, rating int) model.EventAggregate {
	agg := model.EventAggregate{
		Event:   event,
		Rating:  rating,
		Winners: map[model.Position]model.Winner{},
	}
	for regNo, st := range doc {
		if st == nil || st.Event != event {
			continue
		}
		if st.EventStarted {
			agg.EventStarted = true
		}
		if st.EventEnded {
			agg.EventEnded = true
		}
		if st.Position == nil {
			continue
		}

		winner := model.Winner{RegNo: regNo}
		if reg, err := e.source.Lookup(ctx, regNo); err == nil {
			winner.Roster = roster.Resolve(reg, st.RosterOverride)
			winner.College = reg.College
		} else {
			winner.Roster = roster.Normalize(st.RosterOverride)
		}
		agg.Winners[*st.Position] = winner
	}
	return agg
}

// ReportedTeam is one reported entry of an event, joined with its source
// data for the coordinator's roster sheet.
type ReportedTeam struct {
	RegNo   string   `json:"reg_no"`
	Roster  []string `json:"team"`
	College string   `json:"college"`
	Contact string   `json:"contact"`
}

// ReportedTeams lists the reported entries of an event and whether the
// event has started.
func (e *Engine) ReportedTeams(ctx context.Context, event string) ([]ReportedTeam, bool, error) {
	doc, err := e.store.Read(ctx)
	if err != nil {
		return nil, false, err
	}

	started := false
	teams := make([]ReportedTeam, 0)
	for regNo, st := range doc {
		if st == nil || !st.Reported || st.Event != event {
			continue
		}
		if st.EventStarted {
			started = true
		}
		reg, err := e.source.Lookup(ctx, regNo)
		if err != nil {
			// Status entries whose source row disappeared are skipped,
			// matching the original roster sheet behavior.
			continue
		}
		teams = append(teams, ReportedTeam{
			RegNo:   regNo,
			Roster:  roster.Resolve(reg, st.RosterOverride),
			College: reg.College,
			Contact: reg.Contact,
		})
	}
	return teams, started, nil
}

// CompletedEntry is one finalized registration, shaped for certificate
// issuance downstream.
type CompletedEntry struct {
	Event    string          `json:"event"`
	Position *model.Position `json:"position,omitempty"`
	Roster   []string        `json:"team"`
}

// CompletedEntries returns every finalized registration keyed by number.
func (e *Engine) CompletedEntries(ctx context.Context) (map[string]CompletedEntry, error) {
	doc, err := e.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	out := map[string]CompletedEntry{}
	for regNo, st := range doc {
		if st == nil || !st.EventEnded {
			continue
		}
		entry := CompletedEntry{Event: st.Event, Position: st.Position}
		if reg, err := e.source.Lookup(ctx, regNo); err == nil {
			entry.Roster = roster.Resolve(reg, st.RosterOverride)
		} else {
			entry.Roster = roster.Normalize(st.RosterOverride)
		}
		out[regNo] = entry
	}
	return out, nil
}
