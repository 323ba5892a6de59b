package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordType string

const (
	RecordRecharge RecordType = "recharge"
	RecordUsage    RecordType = "usage"
)

type PaymentMethod string

const (
	PaymentAlipay PaymentMethod = "alipay"
	PaymentWechat PaymentMethod = "wechat"
)

// Label returns the human name used in record descriptions.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentAlipay:
		return "Alipay"
	case PaymentWechat:
		return "WeChat Pay"
	default:
		return string(m)
	}
}

// BillingRecord is an entry in an account's ledger.
type BillingRecord struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"-"`
	Type         RecordType      `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UsageStats aggregates token consumption for an account.
type UsageStats struct {
	AccountID        int64     `json:"-"`
	TotalTokens      int64     `json:"total_tokens"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	RequestCount     int64     `json:"request_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}
