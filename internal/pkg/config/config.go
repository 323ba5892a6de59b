package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required")

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	RateLimit RateLimitConfig

	UsageWorkers int `env:"USAGE_WORKERS, default=4"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	Expiration time.Duration `env:"JWT_EXPIRATION, default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=api_platform"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type OAuthConfig struct {
	GitHub          ProviderConfig `env:", prefix=OAUTH_GITHUB_"`
	Gitee           ProviderConfig `env:", prefix=OAUTH_GITEE_"`
	ProviderTimeout time.Duration  `env:"OAUTH_PROVIDER_TIMEOUT, default=10s"`
}

// ProviderConfig is one OAuth client registration. A provider without
// credentials is not offered.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
}

type RateLimitConfig struct {
	// PerMinute caps /v1 requests per API key. Zero disables the limit.
	PerMinute     int64   `env:"RATE_LIMIT_PER_MINUTE, default=60"`
	AuthPerSecond float64 `env:"AUTH_RATE_PER_SECOND,  default=5"`
	AuthBurst     int     `env:"AUTH_RATE_BURST,       default=10"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}
	return &cfg, nil
}
