package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// KeyStore is the slice of the API key repository the authenticator needs.
type KeyStore interface {
	FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
}

// KeyAuthenticator accepts active API keys. Every request reads the current
// key status from the store, so disabling or deleting a key applies to the
// next request.
type KeyAuthenticator struct {
	keys KeyStore
	log  zerolog.Logger
	now  func() time.Time
}

func NewKeyAuthenticator(keys KeyStore, log zerolog.Logger) *KeyAuthenticator {
	return &KeyAuthenticator{keys: keys, log: log, now: time.Now}
}

func (a *KeyAuthenticator) Authenticate(c echo.Context) {
	raw, ok := bearerToken(c)
	if !ok || !domain.LooksLikeAPIKey(raw) {
		return
	}

	ctx := c.Request().Context()
	key, err := a.keys.FindByHash(ctx, domain.HashAPIKey(raw))
	if err != nil {
		if !errors.Is(err, domain.ErrAPIKeyNotFound) {
			a.log.Warn().Err(err).Msg("api key lookup failed")
		}
		metrics.AuthAttemptsTotal.WithLabelValues("api_key", "rejected").Inc()
		return
	}
	if !key.Active() {
		metrics.AuthAttemptsTotal.WithLabelValues("api_key", "rejected").Inc()
		return
	}

	if err := a.keys.TouchLastUsed(ctx, key.ID, a.now()); err != nil {
		a.log.Warn().Err(err).Int64("key_id", key.ID).Msg("failed to update api key last use")
	}

	metrics.AuthAttemptsTotal.WithLabelValues("api_key", "ok").Inc()
	SetCaller(c, CallerPrincipal{AccountID: key.AccountID, KeyID: key.ID})
}
