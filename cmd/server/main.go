// Package main is the entrypoint for the API platform server.
//
// @title                       API Platform
// @version                     1.0
// @description                 Accounts, OAuth identity linking, API keys, billing and an OpenAI-compatible model API.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Session token as "Bearer <token>"
// @securityDefinitions.apikey  APIKeyAuth
// @in                          header
// @name                        Authorization
// @description                 API key as "Bearer sk-..."
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lumen-ai/api-platform/internal/api"
	"github.com/lumen-ai/api-platform/internal/api/handler"
	"github.com/lumen-ai/api-platform/internal/core/ports"
	"github.com/lumen-ai/api-platform/internal/core/service"
	"github.com/lumen-ai/api-platform/internal/core/token"
	"github.com/lumen-ai/api-platform/internal/infrastructure/db/mongo"
	"github.com/lumen-ai/api-platform/internal/infrastructure/db/redis"
	"github.com/lumen-ai/api-platform/internal/infrastructure/oauth"
	"github.com/lumen-ai/api-platform/internal/infrastructure/queue"
	"github.com/lumen-ai/api-platform/internal/pkg/config"
	"github.com/lumen-ai/api-platform/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		zlog.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "api-platform",
	})
	log.Info().Str("env", cfg.Env).Msg("config loaded")

	// 2. Connect to MongoDB and create the unique indexes
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	// 3. Connect to Redis
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	// 4. Repositories and token issuer
	accounts := mongo.NewAccountRepository(db)
	apiKeys := mongo.NewAPIKeyRepository(db)
	identities := mongo.NewIdentityRepository(db)
	billingRepo := mongo.NewBillingRepository(db)
	tokens := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	gen := service.NewGenerator(nil)

	// 5. Services
	authService := service.NewAuthService(accounts, tokens, logger.Component("auth"))
	apiKeyService := service.NewAPIKeyService(apiKeys, gen, logger.Component("apikeys"))
	billingService := service.NewBillingService(accounts, billingRepo, logger.Component("billing"))
	identityLinker := service.NewIdentityLinker(
		accounts, identities, tokens, gen,
		cfg.OAuth.ProviderTimeout,
		logger.Component("oauth"),
		enabledProviders(cfg.OAuth, log)...,
	)

	// 6. Usage workers record /v1 token usage off the request path
	dispatcher := queue.NewDispatcher(cfg.UsageWorkers, billingService, logger.Component("usage"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)
	chatService := service.NewChatService(dispatcher, gen, logger.Component("chat"))

	// 7. Build router with dependencies
	router := api.NewRouter(api.Dependencies{
		Log:         log,
		Tokens:      tokens,
		Accounts:    accounts,
		Keys:        apiKeys,
		RateCounter: redis.NewRateCounter(rdb, time.Minute),
		RateLimit:   cfg.RateLimit,
		Auth:        authService,
		Identity:    identityLinker,
		APIKeys:     apiKeyService,
		Billing:     billingService,
		Chat:        chatService,
		Readiness: map[string]handler.Checker{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   redisPing(rdb),
		},
	})

	// 8. Start HTTP server
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorkers()
		dispatcher.Wait()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Requests are drained; flush queued usage before the stores close.
	stopWorkers()
	dispatcher.Wait()

	log.Info().Msg("server stopped gracefully")
	return nil
}

// enabledProviders returns the OAuth providers that have client credentials.
func enabledProviders(cfg config.OAuthConfig, log zerolog.Logger) []ports.OAuthProvider {
	var providers []ports.OAuthProvider

	github := oauth.Config{ClientID: cfg.GitHub.ClientID, ClientSecret: cfg.GitHub.ClientSecret, RedirectURL: cfg.GitHub.RedirectURI}
	if github.Enabled() {
		providers = append(providers, oauth.NewGitHub(github))
	}
	gitee := oauth.Config{ClientID: cfg.Gitee.ClientID, ClientSecret: cfg.Gitee.ClientSecret, RedirectURL: cfg.Gitee.RedirectURI}
	if gitee.Enabled() {
		providers = append(providers, oauth.NewGitee(gitee))
	}

	for _, p := range providers {
		log.Info().Str("provider", string(p.Name())).Msg("oauth provider enabled")
	}
	return providers
}

func redisPing(rdb *goredis.Client) handler.Checker {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
