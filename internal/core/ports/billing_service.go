package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// UsageInput reports the tokens consumed by one completion.
type UsageInput struct {
	AccountID        int64
	KeyID            int64
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// UsageRecorder persists usage produced on the /v1 API.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, usage UsageInput) error
}

type BillingService interface {
	UsageRecorder
	Usage(ctx context.Context, accountID int64) (*domain.UsageStats, error)
	Records(ctx context.Context, accountID int64) ([]*domain.BillingRecord, error)
	Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, method domain.PaymentMethod) (*domain.BillingRecord, error)
}
