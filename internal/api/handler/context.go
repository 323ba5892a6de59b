package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lumen-ai/api-platform/internal/api/middleware"
)

type callerIdentity = middleware.CallerPrincipal

// ctxAccountID returns the session account attached by the auth chain. Routes
// are guarded by RequireAccount; the check here keeps handlers safe when
// mounted without it.
func ctxAccountID(c echo.Context) (int64, error) {
	p, ok := middleware.AccountFrom(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return p.AccountID, nil
}

func ctxCaller(c echo.Context) (callerIdentity, error) {
	p, ok := middleware.CallerFrom(c)
	if !ok {
		return callerIdentity{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}

// bindValid decodes the body into req and runs struct validation.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
