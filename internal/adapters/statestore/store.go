// Package statestore persists the mutable fest state as file-locked JSON
// documents: one for per-registration lifecycle status, one for event
// ratings, one for event access codes.
//
// Transact is the only sanctioned way to mutate state. It spans load,
// decide, and persist under one exclusive lock, so "check invariant then
// mutate" is atomic with respect to every other caller, in this process or
// another one sharing the data directory.
package statestore

import (
	"context"
	"time"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/pkg/metrics"
)

// Store provides read and transactional write access to the status document.
type Store interface {
	// Read returns the current status snapshot. Reads are lock-free; the
	// atomic document replace guarantees they never see a partial write.
	Read(ctx context.Context) (model.StatusDoc, error)

	// Transact loads the current snapshot, applies fn, and persists the
	// result, all under the store lock. An error from fn aborts the
	// transaction and is returned unwrapped; the prior snapshot stays
	// intact. Returns the committed snapshot.
	Transact(ctx context.Context, fn func(model.StatusDoc) (model.StatusDoc, error)) (model.StatusDoc, error)
}

// FileStore implements Store on a single JSON document.
type FileStore struct {
	doc *docFile
}

// NewFileStore creates a status store backed by the document at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{doc: newDocFile(path, opts...)}
}

// Read returns the current status snapshot.
func (s *FileStore) Read(_ context.Context) (model.StatusDoc, error) {
	doc := model.StatusDoc{}
	if err := s.doc.load(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Transact runs fn against the current snapshot under the store lock and
// persists the document fn returns.
func (s *FileStore) Transact(ctx context.Context, fn func(model.StatusDoc) (model.StatusDoc, error)) (model.StatusDoc, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	if err := s.doc.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.doc.release()

	start := time.Now()
	doc := model.StatusDoc{}
	if err := s.doc.load(&doc); err != nil {
		return nil, err
	}

	next, err := fn(doc.Clone())
	if err != nil {
		return nil, err
	}

	if err := s.doc.save(next); err != nil {
		return nil, err
	}
	metrics.ObserveTransact(time.Since(start))
	metrics.UpdateStatusEntries(len(next))
	return next, nil
}
