package statestore

import "errors"

// Sentinel kinds for state store errors.
var (
	// ErrBusy means the store lock could not be acquired within the bounded
	// timeout. Transient; callers may retry with backoff.
	ErrBusy = errors.New("state store busy")

	// ErrUnavailable means persisting or loading the document failed.
	// Fatal for the current request; not retried automatically.
	ErrUnavailable = errors.New("state store unavailable")

	// ErrInvalidRating rejects ratings outside the 1..5 range.
	ErrInvalidRating = errors.New("invalid event rating")

	// ErrInvalidCode rejects event access codes that are not exactly six
	// characters.
	ErrInvalidCode = errors.New("invalid event code")
)
