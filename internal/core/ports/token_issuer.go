package ports

import "github.com/lumen-ai/api-platform/internal/core/token"

// TokenIssuer mints and verifies session and bind tokens.
type TokenIssuer interface {
	Issue(accountID int64, email string, tokenVersion int64) (string, error)
	IssueBind(accountID int64, email string, tokenVersion int64) (string, error)
	Claims(raw string) (*token.Claims, error)
}
