package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/infrastructure/scheduler"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var simErr *domain.SimulationError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusBadRequest, rootMessage(err, domain.ErrAlreadyLinked, domain.ErrDuplicateRequest)
	case errors.Is(err, domain.ErrNoActiveSimulation):
		return http.StatusBadRequest, domain.ErrNoActiveSimulation.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, rootMessage(err,
			domain.ErrTargetNotFound, domain.ErrUserNotFound, domain.ErrVitalsNotFound, domain.ErrBmiNotFound, domain.ErrNotFound)
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, domain.ErrUserExists.Error()
	case errors.Is(err, scheduler.ErrClosed):
		return http.StatusServiceUnavailable, "service shutting down"
	case errors.As(err, &simErr):
		log.Error().Err(err).Str("user_id", simErr.UserID).Str("path", c.Path()).Msg("simulation failed")
		return http.StatusInternalServerError, "simulation failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// rootMessage returns the message of the first sentinel in candidates that
// err wraps, hiding the service-level context added on the way up.
func rootMessage(err error, candidates ...error) string {
	for _, c := range candidates {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return err.Error()
}
