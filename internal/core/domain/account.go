package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account models a human user of the platform.
type Account struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	TokenVersion int64           `json:"-"`
	AvatarURL    string          `json:"avatar_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasAvatar reports whether an avatar has been set on the account.
func (a *Account) HasAvatar() bool {
	return a.AvatarURL != ""
}
