package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
)

// HitCounter counts hits for a key within the current window.
type HitCounter interface {
	Hit(ctx context.Context, key string) (int64, error)
}

// KeyRateLimit caps requests per API key per counter window. Requests without
// a caller principal pass through. Counter failures let the request through.
func KeyRateLimit(counter HitCounter, limit int64, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok || limit <= 0 {
				return next(c)
			}

			count, err := counter.Hit(c.Request().Context(), "key:"+strconv.FormatInt(caller.KeyID, 10))
			if err != nil {
				log.Warn().Err(err).Int64("key_id", caller.KeyID).Msg("rate limit counter unavailable")
				return next(c)
			}

			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > limit {
				metrics.RateLimitedTotal.WithLabelValues("api_key").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// PublicRateLimit throttles unauthenticated endpoints per client IP with an
// in-memory token bucket.
func PublicRateLimit(perSecond float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.WithLabelValues("public").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
