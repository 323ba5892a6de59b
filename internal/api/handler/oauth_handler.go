package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/api/middleware"
	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// OAuthHandler serves the provider login, register and bind flow.
type OAuthHandler struct {
	identities ports.IdentityService
	log        zerolog.Logger
}

func NewOAuthHandler(identities ports.IdentityService, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{identities: identities, log: log}
}

// Authorize returns the provider authorization URL. With bind=true the caller
// must be signed in and the callback links the identity to their account.
//
// @Summary      Provider authorization URL
// @Tags         oauth
// @Produce      json
// @Param        provider  path      string  true   "github or gitee"
// @Param        bind      query     bool    false  "Link to the signed-in account"
// @Success      200       {object}  authorizationURLResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /api/auth/oauth/{provider} [get]
func (h *OAuthHandler) Authorize(c echo.Context) error {
	provider, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		return err
	}

	var bindFor *int64
	if bind, _ := strconv.ParseBool(c.QueryParam("bind")); bind {
		p, ok := middleware.AccountFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		bindFor = &p.AccountID
	}

	url, err := h.identities.AuthorizationURL(c.Request().Context(), provider, bindFor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authorizationURLResponse{URL: url})
}

// Callback completes the flow: it logs in, registers or binds.
//
// @Summary      Provider callback
// @Tags         oauth
// @Produce      json
// @Param        provider  path      string  true   "github or gitee"
// @Param        code      query     string  true   "Authorization code"
// @Param        state     query     string  false  "Opaque state; bind:<token> for binds"
// @Success      200       {object}  oauthCallbackResponse
// @Failure      400       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      502       {object}  errorResponse
// @Router       /api/auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	provider, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		return err
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}

	result, err := h.identities.Callback(c.Request().Context(), provider, code, c.QueryParam("state"))
	if err != nil {
		metrics.OAuthResolutionsTotal.WithLabelValues(string(provider), "error").Inc()
		return err
	}

	outcome := string(result.Outcome)
	if result.NewAccount {
		outcome = "registered"
	}
	metrics.OAuthResolutionsTotal.WithLabelValues(string(provider), outcome).Inc()
	h.log.Info().
		Str("provider", string(provider)).
		Str("outcome", outcome).
		Int64("account_id", result.Account.ID).
		Msg("oauth callback resolved")

	resp := oauthCallbackResponse{
		Outcome:    string(result.Outcome),
		Token:      result.Token,
		NewAccount: result.NewAccount,
		User:       toAccountResponse(result.Account),
	}
	if result.Token != "" {
		resp.Type = tokenType
	}
	return c.JSON(http.StatusOK, resp)
}

// Bindings lists the providers linked to the caller.
//
// @Summary      List provider bindings
// @Tags         oauth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   bindingResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/oauth/bindings [get]
func (h *OAuthHandler) Bindings(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	identities, err := h.identities.Bindings(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	resp := make([]bindingResponse, 0, len(identities))
	for _, i := range identities {
		resp = append(resp, toBindingResponse(i))
	}
	return c.JSON(http.StatusOK, resp)
}

// Unbind removes the caller's binding for a provider.
//
// @Summary      Remove a provider binding
// @Tags         oauth
// @Security     BearerAuth
// @Param        provider  path  string  true  "github or gitee"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/auth/oauth/bindings/{provider} [delete]
func (h *OAuthHandler) Unbind(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	provider, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		return err
	}
	if err := h.identities.Unbind(c.Request().Context(), accountID, provider); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
