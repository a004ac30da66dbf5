package api

import (
	"errors"
	"net/http"

	"github.com/okian/mela/internal/adapters/registry"
	"github.com/okian/mela/internal/adapters/statestore"
	service "github.com/okian/mela/internal/app"
	"github.com/okian/mela/internal/domain/roster"
	"github.com/okian/mela/internal/lifecycle"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// mapError translates domain sentinels to an HTTP status and error code.
// Unrecognized errors surface as 500.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, roster.ErrInvalidRosterSize),
		errors.Is(err, statestore.ErrInvalidRating),
		errors.Is(err, statestore.ErrInvalidCode),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, lifecycle.ErrEventLocked):
		return http.StatusConflict, "event_locked"
	case errors.Is(err, lifecycle.ErrInvalidWinnerData):
		return http.StatusConflict, "invalid_winner_data"
	case errors.Is(err, lifecycle.ErrNothingToReset):
		return http.StatusConflict, "nothing_to_reset"
	case errors.Is(err, registry.ErrDuplicateRegistration):
		return http.StatusConflict, "duplicate_registration"
	case errors.Is(err, registry.ErrMappingNotSet):
		return http.StatusConflict, "mapping_not_set"
	case errors.Is(err, statestore.ErrBusy), errors.Is(err, registry.ErrBusy):
		return http.StatusServiceUnavailable, "busy"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
