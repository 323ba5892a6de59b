// Package oauth implements the GitHub and Gitee authorization-code flows.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxProfileBytes    = 1 << 20
)

// Endpoints overrides provider URLs. Empty fields keep the provider default.
type Endpoints struct {
	AuthURL  string
	TokenURL string
	UserURL  string
}

// Config holds the client registration for one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoints    Endpoints
	HTTPClient   *http.Client
}

// Enabled reports whether the provider has client credentials.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Provider is an OAuth2 authorization-code client plus a profile endpoint.
type Provider struct {
	name      domain.Provider
	oauth     oauth2.Config
	userURL   string
	client    *http.Client
	authorize func(req *http.Request, accessToken string)
}

type profilePayload struct {
	ID        json.Number `json:"id"`
	Login     string      `json:"login"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatar_url"`
}

func newProvider(name domain.Provider, cfg Config, defaults Endpoints, scopes []string, authorize func(*http.Request, string)) *Provider {
	ep := defaults
	if cfg.Endpoints.AuthURL != "" {
		ep.AuthURL = cfg.Endpoints.AuthURL
	}
	if cfg.Endpoints.TokenURL != "" {
		ep.TokenURL = cfg.Endpoints.TokenURL
	}
	if cfg.Endpoints.UserURL != "" {
		ep.UserURL = cfg.Endpoints.UserURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Provider{
		name: name,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userURL:   ep.UserURL,
		client:    client,
		authorize: authorize,
	}
}

func (p *Provider) Name() domain.Provider {
	return p.name
}

// AuthCodeURL returns the authorize redirect. An empty state is omitted.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades code for an access token at the provider's token endpoint.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("no access token in response")
	}
	return tok.AccessToken, nil
}

// Profile fetches the user behind accessToken.
func (p *Provider) Profile(ctx context.Context, accessToken string) (*domain.ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	p.authorize(req, accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProfileBytes))
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes))
	dec.UseNumber()
	var payload profilePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	id := payload.ID.String()
	if id == "" || id == "0" {
		return nil, errors.New("profile has no user id")
	}

	return &domain.ProviderProfile{
		ID:        id,
		Login:     payload.Login,
		Name:      payload.Name,
		Email:     payload.Email,
		AvatarURL: payload.AvatarURL,
	}, nil
}
