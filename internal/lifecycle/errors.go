package lifecycle

import "errors"

// Sentinel kinds for lifecycle errors. All are terminal business-rule
// violations for the call that hit them; none are retried automatically.
var (
	// ErrEventLocked means the event already has a finalized result.
	// Reporting, starting, and re-ending are blocked until a reset.
	ErrEventLocked = errors.New("event already completed")

	// ErrNothingToReset means a reset was requested for an event with no
	// finalized entries.
	ErrNothingToReset = errors.New("nothing to reset")

	// ErrInvalidWinnerData rejects an EndEvent call whose winners are
	// empty, reference unknown entries, carry invalid positions, or assign
	// the same position twice.
	ErrInvalidWinnerData = errors.New("invalid winner data")
)
