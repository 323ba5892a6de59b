package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// CreatedAPIKey is returned once at creation; RawKey is never retrievable again.
type CreatedAPIKey struct {
	Key    *domain.APIKey
	RawKey string
}

type APIKeyService interface {
	List(ctx context.Context, accountID int64) ([]*domain.APIKey, error)
	Create(ctx context.Context, accountID int64, name string) (*CreatedAPIKey, error)
	Delete(ctx context.Context, accountID, id int64) error
	SetStatus(ctx context.Context, accountID, id int64, status domain.APIKeyStatus) (*domain.APIKey, error)
}
