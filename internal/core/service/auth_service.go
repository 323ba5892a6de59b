package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// AuthService implements password registration, login and session revocation.
type AuthService struct {
	accounts ports.AccountRepository
	tokens   ports.TokenIssuer
	logger   zerolog.Logger
}

func NewAuthService(accounts ports.AccountRepository, tokens ports.TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return "", nil, domain.ErrMissingFields
	}

	taken, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, domain.ErrEmailTaken
	}
	taken, err = s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account, err := s.accounts.Create(ctx, &domain.Account{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Balance:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Int64("account_id", account.ID).Str("username", account.Username).Msg("account registered")
	return token, account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, account, nil
}

// Logout revokes every outstanding session of the account.
func (s *AuthService) Logout(ctx context.Context, accountID int64) error {
	version, err := s.accounts.IncrementTokenVersion(ctx, accountID)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", accountID).Int64("token_version", version).Msg("sessions revoked")
	return nil
}

func (s *AuthService) Me(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, accountID int64, input ports.UpdateProfileInput) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username != "" && username != account.Username {
		taken, err := s.accounts.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrUsernameTaken
		}
	} else {
		username = account.Username
	}

	if email != "" && email != account.Email {
		taken, err := s.accounts.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
	} else {
		email = account.Email
	}

	return s.accounts.UpdateProfile(ctx, accountID, username, email)
}

// ChangePassword verifies the current password, stores the new one and
// revokes every outstanding session.
func (s *AuthService) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	if next == "" {
		return domain.ErrEmptyPassword
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Int64("account_id", accountID).Msg("password changed, sessions revoked")
	return nil
}
