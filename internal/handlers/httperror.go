package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/apperrors"
)

// httpError maps domain errors to HTTP responses. Credential failures never
// leak detail; storage degradation never reaches this path.
func httpError(err error) error {
	var verr *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, apperrors.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, apperrors.ErrNotAMember):
		return echo.NewHTTPError(http.StatusForbidden, "Not a member of this group")
	case errors.Is(err, apperrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, apperrors.ErrDuplicateUsername):
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	case errors.Is(err, apperrors.ErrTooManyFiles):
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrTooManyFiles.Error())
	case errors.Is(err, apperrors.ErrNoValidFiles):
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrNoValidFiles.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Reason)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
