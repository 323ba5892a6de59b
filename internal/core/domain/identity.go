package domain

import (
	"strings"
	"time"
)

// Provider names a supported OAuth identity provider.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitee  Provider = "gitee"
)

// ParseProvider maps a path segment to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGitHub:
		return ProviderGitHub, nil
	case ProviderGitee:
		return ProviderGitee, nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// ExternalIdentity binds an account to a provider user id.
// (Provider, ProviderUserID) and (AccountID, Provider) are both unique.
type ExternalIdentity struct {
	ID             int64     `json:"-"`
	AccountID      int64     `json:"-"`
	Provider       Provider  `json:"provider"`
	ProviderUserID string    `json:"-"`
	AccessToken    string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

// ProviderProfile is the subset of a provider's user profile we rely on.
type ProviderProfile struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
}
