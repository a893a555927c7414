package http

import (
	"errors"
	"net/http"

	"task-scheduling-assistant/internal/scheduling"
	pkgErrors "task-scheduling-assistant/pkg/errors"
)

var errMissingUserID = pkgErrors.NewHTTPError(http.StatusBadRequest, "user_id is required")

// mapError translates domain errors into HTTP errors from pkg/errors.
func (h *handler) mapError(err error) error {
	switch {
	case errors.Is(err, scheduling.ErrEmptyUser):
		return errMissingUserID
	case errors.Is(err, scheduling.ErrEmptyTitle),
		errors.Is(err, scheduling.ErrInvalidDeadline),
		errors.Is(err, scheduling.ErrInvalidResponse),
		errors.Is(err, scheduling.ErrInvalidPreferences):
		return pkgErrors.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrTaskNotFound):
		return pkgErrors.NewHTTPError(http.StatusNotFound, "task not found")
	case errors.Is(err, scheduling.ErrEventNotFound):
		return pkgErrors.NewHTTPError(http.StatusNotFound, "event not found")
	case errors.Is(err, scheduling.ErrEventClosed):
		return pkgErrors.NewHTTPError(http.StatusConflict, "event already answered")
	case errors.Is(err, scheduling.ErrStateConflict):
		return pkgErrors.NewHTTPError(http.StatusConflict, "conversation changed, retry")
	default:
		return pkgErrors.ErrInternalServerError
	}
}
