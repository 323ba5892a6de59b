package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

type rechargeRequest struct {
	Amount        decimal.Decimal `json:"amount"         swaggertype:"number"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=alipay wechat"`
}

type usageResponse struct {
	TotalTokens      int64 `json:"total_tokens"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	RequestCount     int64 `json:"request_count"`
}

type billingRecordResponse struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
