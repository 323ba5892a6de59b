package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// OAuthProvider talks to a single third-party identity provider.
type OAuthProvider interface {
	Name() domain.Provider
	AuthCodeURL(state string) string
	// Exchange trades a one-time authorization code for a provider access token.
	Exchange(ctx context.Context, code string) (string, error)
	Profile(ctx context.Context, accessToken string) (*domain.ProviderProfile, error)
}
