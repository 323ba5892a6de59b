package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// BillingService owns balances, the ledger and usage aggregates.
type BillingService struct {
	accounts ports.AccountRepository
	repo     ports.BillingRepository
	logger   zerolog.Logger
}

func NewBillingService(accounts ports.AccountRepository, repo ports.BillingRepository, logger zerolog.Logger) *BillingService {
	return &BillingService{accounts: accounts, repo: repo, logger: logger}
}

func (s *BillingService) Usage(ctx context.Context, accountID int64) (*domain.UsageStats, error) {
	return s.repo.GetUsage(ctx, accountID)
}

// Records returns the ledger newest first.
func (s *BillingService) Records(ctx context.Context, accountID int64) ([]*domain.BillingRecord, error) {
	return s.repo.ListRecords(ctx, accountID)
}

// Recharge credits the balance and writes a ledger entry. Payment capture is
// outside this service; the caller is trusted to have collected the funds.
func (s *BillingService) Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, method domain.PaymentMethod) (*domain.BillingRecord, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if method != domain.PaymentAlipay && method != domain.PaymentWechat {
		return nil, domain.ErrInvalidPaymentMethod
	}

	account, err := s.accounts.AddBalance(ctx, accountID, amount)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.AppendRecord(ctx, &domain.BillingRecord{
		AccountID:    accountID,
		Type:         domain.RecordRecharge,
		Amount:       amount,
		BalanceAfter: account.Balance,
		Description:  fmt.Sprintf("Recharge via %s", method.Label()),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Str("method", string(method)).
		Msg("balance recharged")
	return record, nil
}

// RecordUsage adds one completion to the account's usage aggregate.
func (s *BillingService) RecordUsage(ctx context.Context, usage ports.UsageInput) error {
	if err := s.repo.AddUsage(ctx, usage.AccountID, usage.PromptTokens, usage.CompletionTokens); err != nil {
		return fmt.Errorf("record usage for account %d: %w", usage.AccountID, err)
	}
	return nil
}
