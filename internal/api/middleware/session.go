package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/token"
)

// ClaimsReader verifies a token and returns its claims.
type ClaimsReader interface {
	Claims(raw string) (*token.Claims, error)
}

// AccountLoader loads accounts by id.
type AccountLoader interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
}

// SessionAuthenticator accepts session tokens whose tokenVersion still matches
// the stored account.
type SessionAuthenticator struct {
	tokens   ClaimsReader
	accounts AccountLoader
	log      zerolog.Logger
}

func NewSessionAuthenticator(tokens ClaimsReader, accounts AccountLoader, log zerolog.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{tokens: tokens, accounts: accounts, log: log}
}

func (a *SessionAuthenticator) Authenticate(c echo.Context) {
	raw, ok := bearerToken(c)
	if !ok {
		return
	}

	claims, err := a.tokens.Claims(raw)
	if err != nil || claims.Purpose != "" {
		metrics.AuthAttemptsTotal.WithLabelValues("session", "rejected").Inc()
		return
	}

	account, err := a.accounts.FindByID(c.Request().Context(), claims.AccountID)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			a.log.Warn().Err(err).Int64("account_id", claims.AccountID).Msg("session account lookup failed")
		}
		metrics.AuthAttemptsTotal.WithLabelValues("session", "rejected").Inc()
		return
	}

	if account.TokenVersion != claims.TokenVersion {
		metrics.AuthAttemptsTotal.WithLabelValues("session", "rejected").Inc()
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("session", "ok").Inc()
	SetAccount(c, AccountPrincipal{AccountID: account.ID})
}
