package http

import (
	"errors"
	"net/http"

	"task-scheduling-assistant/internal/calendar"
	pkgErrors "task-scheduling-assistant/pkg/errors"
)

var (
	errMissingUserID = pkgErrors.NewHTTPError(http.StatusBadRequest, "user_id is required")
	errMissingToken  = pkgErrors.NewHTTPError(http.StatusBadRequest, "access_token is required")
)

func (h *handler) mapError(err error) error {
	switch {
	case errors.Is(err, calendar.ErrEmptyToken):
		return errMissingToken
	case errors.Is(err, calendar.ErrOAuthDisabled):
		return pkgErrors.NewHTTPError(http.StatusNotFound, "calendar consent flow is not configured")
	case errors.Is(err, calendar.ErrProviderFailed):
		return pkgErrors.NewHTTPError(http.StatusBadRequest, "calendar provider rejected the authorization")
	default:
		return pkgErrors.ErrInternalServerError
	}
}
