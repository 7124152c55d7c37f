package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrOwnProduct):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// fail logs the error under event and converts it into an echo.HTTPError.
// Internal errors are not echoed to the client.
func fail(ctx context.Context, event string, err error) error {
	l := logging.FromContext(ctx)
	status := statusOf(err)
	if status >= 500 {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal error")
	}
	l.Warn(event, "status", status, "error", err)
	return echo.NewHTTPError(status, err.Error())
}

func badRequest(ctx context.Context, event, reason string, err error) error {
	logging.FromContext(ctx).Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
