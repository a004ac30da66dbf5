package statestore

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeLength is the required length of an event access code.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeStore persists the event name to access code document. Coordinators
// verify a code before driving an event's lifecycle.
type CodeStore struct {
	doc      *docFile
	defaults map[string]string
}

// NewCodeStore creates a code store backed by the document at path.
// Defaults are merged into reads so newly configured events always resolve;
// stored codes take precedence.
func NewCodeStore(path string, defaults map[string]string, opts ...Option) *CodeStore {
	return &CodeStore{doc: newDocFile(path, opts...), defaults: defaults}
}

// All returns the stored codes merged over the defaults.
func (s *CodeStore) All(_ context.Context) (map[string]string, error) {
	stored := map[string]string{}
	if err := s.doc.load(&stored); err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(s.defaults)+len(stored))
	for event, code := range s.defaults {
		merged[event] = code
	}
	for event, code := range stored {
		merged[event] = code
	}
	return merged, nil
}

// Verify reports whether code matches the configured code for event.
// Comparison is case-insensitive. The second result is false when the event
// has no code configured at all.
func (s *CodeStore) Verify(ctx context.Context, event, code string) (ok, configured bool, err error) {
	codes, err := s.All(ctx)
	if err != nil {
		return false, false, err
	}
	want, exists := codes[event]
	if !exists {
		return false, false, nil
	}
	return strings.EqualFold(want, code), true, nil
}

// Set stores a code for an event, uppercased. Codes must be exactly
// CodeLength characters.
func (s *CodeStore) Set(ctx context.Context, event, code string) error {
	if len(code) != CodeLength {
		return ErrInvalidCode
	}

	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	if err := s.doc.acquire(ctx); err != nil {
		return err
	}
	defer s.doc.release()

	stored := map[string]string{}
	if err := s.doc.load(&stored); err != nil {
		return err
	}
	stored[event] = strings.ToUpper(code)
	return s.doc.save(stored)
}

// Init generates and stores a random code for every listed event that has
// neither a stored nor a default code. It returns only the newly generated
// codes.
func (s *CodeStore) Init(ctx context.Context, events []string) (map[string]string, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	if err := s.doc.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.doc.release()

	stored := map[string]string{}
	if err := s.doc.load(&stored); err != nil {
		return nil, err
	}

	generated := map[string]string{}
	for _, event := range events {
		if _, ok := stored[event]; ok {
			continue
		}
		if _, ok := s.defaults[event]; ok {
			continue
		}
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		stored[event] = code
		generated[event] = code
	}

	if len(generated) == 0 {
		return generated, nil
	}
	if err := s.doc.save(stored); err != nil {
		return nil, err
	}
	return generated, nil
}

func randomCode() (string, error) {
	var b strings.Builder
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
