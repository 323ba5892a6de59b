package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
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

var domainStatus = []struct {
	err  error
	code int
}{
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrAPIKeyNotFound, http.StatusNotFound},
	{domain.ErrBindingNotFound, http.StatusNotFound},
	{domain.ErrIdentityNotFound, http.StatusNotFound},
	{domain.ErrEmailTaken, http.StatusConflict},
	{domain.ErrUsernameTaken, http.StatusConflict},
	{domain.ErrIdentityLinkedElsewhere, http.StatusConflict},
	{domain.ErrProviderAlreadyBound, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrWrongPassword, http.StatusUnauthorized},
	{domain.ErrUnsupportedProvider, http.StatusBadRequest},
	{domain.ErrInvalidBindState, http.StatusBadRequest},
	{domain.ErrMissingFields, http.StatusBadRequest},
	{domain.ErrEmptyPassword, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, guards, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Upstream OAuth provider failures.
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		log.Warn().Err(err).Str("provider", string(pe.Provider)).Msg("oauth provider call failed")
		return http.StatusBadGateway, pe.Error()
	}

	// Known domain errors → deterministic HTTP codes. The sentinel's own
	// message is returned so wrapping context never reaches the client.
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			return m.code, m.err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
