package ports

import (
	"context"
	"time"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// APIKeyRepository persists API keys. Mutations are scoped by owning account.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error)
	FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*domain.APIKey, error)
	SetStatus(ctx context.Context, accountID, id int64, status domain.APIKeyStatus) (*domain.APIKey, error)
	Delete(ctx context.Context, accountID, id int64) error
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
}
