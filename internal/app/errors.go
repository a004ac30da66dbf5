package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrValidation rejects a request whose payload fails a business rule
	// before any state is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotStarted means an operation was called before Start.
	ErrNotStarted = errors.New("service not started")
)
