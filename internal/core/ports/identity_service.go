package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// LinkOutcome is the terminal state of an OAuth callback.
type LinkOutcome string

const (
	OutcomeLoggedIn LinkOutcome = "logged_in"
	OutcomeBound    LinkOutcome = "bound"
)

// LinkResult describes a resolved OAuth callback. Token is empty for binds.
type LinkResult struct {
	Outcome    LinkOutcome
	Account    *domain.Account
	Token      string
	NewAccount bool
}

// IdentityService drives the OAuth login/register/bind flow.
type IdentityService interface {
	// AuthorizationURL builds the provider redirect. A non-nil bindFor requests
	// that the callback attach the identity to that account.
	AuthorizationURL(ctx context.Context, provider domain.Provider, bindFor *int64) (string, error)
	Callback(ctx context.Context, provider domain.Provider, code, state string) (*LinkResult, error)
	Bindings(ctx context.Context, accountID int64) ([]*domain.ExternalIdentity, error)
	Unbind(ctx context.Context, accountID int64, provider domain.Provider) error
}
