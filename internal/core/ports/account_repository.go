package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// AccountRepository persists accounts. It is the uniqueness authority for
// email and username: Create and UpdateProfile return domain.ErrEmailTaken or
// domain.ErrUsernameTaken when the store rejects the write.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, username, email string) (*domain.Account, error)
	// UpdatePassword stores a new hash and bumps the token version in one write.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// IncrementTokenVersion atomically bumps the token version and returns the new value.
	IncrementTokenVersion(ctx context.Context, id int64) (int64, error)
	// SetAvatarIfEmpty sets the avatar only when the account has none.
	SetAvatarIfEmpty(ctx context.Context, id int64, avatarURL string) error
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Account, error)
	Delete(ctx context.Context, id int64) error
}
