package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

const defaultKeyName = "default"

// APIKeyService manages the programmatic credentials of an account.
type APIKeyService struct {
	repo   ports.APIKeyRepository
	gen    *Generator
	logger zerolog.Logger
}

func NewAPIKeyService(repo ports.APIKeyRepository, gen *Generator, logger zerolog.Logger) *APIKeyService {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &APIKeyService{repo: repo, gen: gen, logger: logger}
}

func (s *APIKeyService) List(ctx context.Context, accountID int64) ([]*domain.APIKey, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Create generates a new key. The raw key is only available in the result.
func (s *APIKeyService) Create(ctx context.Context, accountID int64, name string) (*ports.CreatedAPIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultKeyName
	}

	raw, err := s.gen.APIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	key, err := s.repo.Create(ctx, &domain.APIKey{
		AccountID: accountID,
		Name:      name,
		KeyHash:   domain.HashAPIKey(raw),
		KeyPrefix: domain.DisplayPrefix(raw),
		Status:    domain.APIKeyActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("account_id", accountID).Int64("key_id", key.ID).Msg("api key created")
	return &ports.CreatedAPIKey{Key: key, RawKey: raw}, nil
}

func (s *APIKeyService) Delete(ctx context.Context, accountID, id int64) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", accountID).Int64("key_id", id).Msg("api key deleted")
	return nil
}

func (s *APIKeyService) SetStatus(ctx context.Context, accountID, id int64, status domain.APIKeyStatus) (*domain.APIKey, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	key, err := s.repo.SetStatus(ctx, accountID, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("account_id", accountID).Int64("key_id", id).Str("status", string(status)).Msg("api key status changed")
	return key, nil
}
