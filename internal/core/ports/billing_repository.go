package ports

import (
	"context"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

type BillingRepository interface {
	AppendRecord(ctx context.Context, record *domain.BillingRecord) (*domain.BillingRecord, error)
	ListRecords(ctx context.Context, accountID int64) ([]*domain.BillingRecord, error)
	// AddUsage upserts the account's usage aggregate.
	AddUsage(ctx context.Context, accountID, promptTokens, completionTokens int64) error
	GetUsage(ctx context.Context, accountID int64) (*domain.UsageStats, error)
}
