package statestore

import (
	"context"

	"github.com/okian/mela/internal/domain/scoring"
)

// RatingStore persists the event name to star rating document.
type RatingStore struct {
	doc *docFile
}

// NewRatingStore creates a rating store backed by the document at path.
func NewRatingStore(path string, opts ...Option) *RatingStore {
	return &RatingStore{doc: newDocFile(path, opts...)}
}

// All returns every stored rating. Events absent from the document rate as
// scoring.DefaultRating; callers apply that default, the store does not
// invent entries.
func (s *RatingStore) All(_ context.Context) (map[string]int, error) {
	ratings := map[string]int{}
	if err := s.doc.load(&ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// Get returns the rating for one event, defaulted when unset.
func (s *RatingStore) Get(ctx context.Context, event string) (int, error) {
	ratings, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	if r, ok := ratings[event]; ok {
		return scoring.ClampRating(r), nil
	}
	return scoring.DefaultRating, nil
}

// Set stores a rating for an event. Ratings outside 1..5 are rejected.
func (s *RatingStore) Set(ctx context.Context, event string, rating int) error {
	if !scoring.ValidRating(rating) {
		return ErrInvalidRating
	}

	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	if err := s.doc.acquire(ctx); err != nil {
		return err
	}
	defer s.doc.release()

	ratings := map[string]int{}
	if err := s.doc.load(&ratings); err != nil {
		return err
	}
	ratings[event] = rating
	return s.doc.save(ratings)
}
