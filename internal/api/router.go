package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lumen-ai/api-platform/docs"
	"github.com/lumen-ai/api-platform/internal/api/handler"
	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/api/middleware"
	"github.com/lumen-ai/api-platform/internal/core/ports"
	"github.com/lumen-ai/api-platform/internal/pkg/config"
)

// Dependencies holds everything the HTTP layer needs. Services are built by
// the caller so the router only does wiring.
type Dependencies struct {
	Log zerolog.Logger

	// Registerer receives the HTTP request metrics. Nil means the default registry.
	Registerer prometheus.Registerer

	Tokens      middleware.ClaimsReader
	Accounts    middleware.AccountLoader
	Keys        middleware.KeyStore
	RateCounter middleware.HitCounter
	RateLimit   config.RateLimitConfig

	Auth     ports.AuthService
	Identity ports.IdentityService
	APIKeys  ports.APIKeyService
	Billing  ports.BillingService
	Chat     ports.ChatService

	Readiness map[string]handler.Checker
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace,
		Registerer: d.Registerer,
	}))

	// Exactly one authenticator runs per request: API keys on /v1/, sessions elsewhere.
	e.Use(middleware.Chain(
		middleware.Rule{Match: middleware.PathPrefix("/v1/"), Authenticator: middleware.NewKeyAuthenticator(d.Keys, d.Log)},
		middleware.Rule{Match: middleware.AnyPath(), Authenticator: middleware.NewSessionAuthenticator(d.Tokens, d.Accounts, d.Log)},
	))

	requireAccount := middleware.RequireAccount()
	publicLimit := middleware.PublicRateLimit(d.RateLimit.AuthPerSecond, d.RateLimit.AuthBurst)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	oauthHandler := handler.NewOAuthHandler(d.Identity, d.Log)
	apiKeyHandler := handler.NewAPIKeyHandler(d.APIKeys)
	billingHandler := handler.NewBillingHandler(d.Billing)
	chatHandler := handler.NewChatHandler(d.Chat)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register, publicLimit)
	auth.POST("/login", authHandler.Login, publicLimit)
	auth.POST("/logout", authHandler.Logout, requireAccount)
	auth.GET("/me", authHandler.Me, requireAccount)
	auth.PUT("/profile", authHandler.UpdateProfile, requireAccount)
	auth.PUT("/password", authHandler.ChangePassword, requireAccount)
	e.GET("/api/user/profile", authHandler.Me, requireAccount)

	// --- OAuth routes ---
	oauth := auth.Group("/oauth")
	oauth.GET("/bindings", oauthHandler.Bindings, requireAccount)
	oauth.DELETE("/bindings/:provider", oauthHandler.Unbind, requireAccount)
	oauth.GET("/:provider", oauthHandler.Authorize)
	oauth.GET("/:provider/callback", oauthHandler.Callback, publicLimit)

	// --- API key routes ---
	keys := e.Group("/api/api-keys", requireAccount)
	keys.GET("", apiKeyHandler.List)
	keys.POST("", apiKeyHandler.Create)
	keys.DELETE("/:id", apiKeyHandler.Delete)
	keys.PATCH("/:id/status", apiKeyHandler.UpdateStatus)

	// --- Billing routes ---
	billing := e.Group("/api/billing", requireAccount)
	billing.GET("/usage", billingHandler.Usage)
	billing.GET("/records", billingHandler.Records)
	billing.POST("/recharge", billingHandler.Recharge)

	// --- Model API (API key auth) ---
	v1 := e.Group("/v1")
	v1.GET("/models", chatHandler.Models)
	v1.POST("/chat/completions", chatHandler.Completions,
		middleware.RequireCaller(),
		middleware.KeyRateLimit(d.RateCounter, d.RateLimit.PerMinute, d.Log),
	)

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
