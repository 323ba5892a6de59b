package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"time"
)

const (
	// APIKeyPrefix is the literal prefix every API key starts with.
	APIKeyPrefix = "sk-"
	// APIKeyBodyLength is the number of random characters after the prefix.
	APIKeyBodyLength = 32

	displayPrefixLength = 8
)

var apiKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9]{32}$`)

type APIKeyStatus string

const (
	APIKeyActive   APIKeyStatus = "active"
	APIKeyDisabled APIKeyStatus = "disabled"
)

// Valid reports whether s is a known status.
func (s APIKeyStatus) Valid() bool {
	return s == APIKeyActive || s == APIKeyDisabled
}

// APIKey is a programmatic credential. The raw key is never persisted; only its
// SHA-256 digest and a short display prefix are stored.
type APIKey struct {
	ID         int64        `json:"id"`
	AccountID  int64        `json:"-"`
	Name       string       `json:"name"`
	KeyHash    string       `json:"-"`
	KeyPrefix  string       `json:"key_prefix"`
	Status     APIKeyStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	LastUsedAt *time.Time   `json:"last_used_at,omitempty"`
}

// Active reports whether the key may authenticate.
func (k *APIKey) Active() bool {
	return k.Status == APIKeyActive
}

// LooksLikeAPIKey reports whether raw has the shape of an API key.
func LooksLikeAPIKey(raw string) bool {
	return apiKeyPattern.MatchString(raw)
}

// HashAPIKey returns the hex-encoded SHA-256 digest used to look keys up.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DisplayPrefix returns the leading characters shown in key listings.
func DisplayPrefix(raw string) string {
	if len(raw) <= displayPrefixLength {
		return raw
	}
	return raw[:displayPrefixLength]
}
