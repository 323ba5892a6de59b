package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// RegisterInput is the DTO for password registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries the optional fields of a profile update. Empty
// values leave the stored field unchanged.
type UpdateProfileInput struct {
	Username string
	Email    string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, *domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Logout(ctx context.Context, accountID int64) error
	Me(ctx context.Context, accountID int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID int64, input UpdateProfileInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID int64, current, next string) error
}
