package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	// ErrNotFound means the registration number is not present in the
	// spreadsheet.
	ErrNotFound = errors.New("registration not found")

	// ErrDuplicateRegistration rejects a spot registration whose number is
	// already taken.
	ErrDuplicateRegistration = errors.New("registration number already exists")

	// ErrMappingNotSet means the column mapping document is missing or does
	// not cover the required columns.
	ErrMappingNotSet = errors.New("column mapping not set")

	// ErrSourceUnavailable means the spreadsheet could not be read or
	// written.
	ErrSourceUnavailable = errors.New("registration source unavailable")

	// ErrBusy means the spreadsheet lock could not be acquired in time.
	ErrBusy = errors.New("registration source busy")
)
