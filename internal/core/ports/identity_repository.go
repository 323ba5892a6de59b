package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// IdentityRepository persists external identity bindings. Create returns
// domain.ErrIdentityLinkedElsewhere or domain.ErrProviderAlreadyBound when one
// of the two uniqueness constraints rejects the write.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.ExternalIdentity) (*domain.ExternalIdentity, error)
	FindByProviderUser(ctx context.Context, provider domain.Provider, providerUserID string) (*domain.ExternalIdentity, error)
	FindByAccountAndProvider(ctx context.Context, accountID int64, provider domain.Provider) (*domain.ExternalIdentity, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*domain.ExternalIdentity, error)
	UpdateAccessToken(ctx context.Context, id int64, accessToken string) error
	DeleteByAccountAndProvider(ctx context.Context, accountID int64, provider domain.Provider) error
}
