// Package token issues and verifies HS256 session tokens.
//
// A session token carries the account id as subject, the account email and the
// account's tokenVersion at issue time. Bumping the stored tokenVersion revokes
// every token minted before the bump without any server-side session table.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PurposeBind marks short-lived tokens that carry OAuth bind intent.
const PurposeBind = "bind"

const (
	defaultTTL     = 24 * time.Hour
	defaultBindTTL = 10 * time.Minute
)

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified payload of a token.
type Claims struct {
	AccountID    int64
	Email        string
	TokenVersion int64
	Purpose      string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

type wireClaims struct {
	Email        string  `json:"email"`
	TokenVersion Version `json:"tokenVersion"`
	Purpose      string  `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a fixed secret. It is safe for
// concurrent use.
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	bindTTL time.Duration
	now     func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used for iat, exp and validation.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithBindTTL overrides the lifetime of bind tokens.
func WithBindTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.bindTTL = ttl
		}
	}
}

func NewIssuer(secret string, ttl time.Duration, opts ...Option) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	i := &Issuer{
		secret:  []byte(secret),
		ttl:     ttl,
		bindTTL: defaultBindTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue mints a session token.
func (i *Issuer) Issue(accountID int64, email string, tokenVersion int64) (string, error) {
	return i.sign(accountID, email, tokenVersion, "", i.ttl)
}

// IssueBind mints a bind-intent token that session verification refuses.
func (i *Issuer) IssueBind(accountID int64, email string, tokenVersion int64) (string, error) {
	return i.sign(accountID, email, tokenVersion, PurposeBind, i.bindTTL)
}

// Verify checks signature and expiry only.
func (i *Issuer) Verify(raw string) bool {
	_, err := i.Claims(raw)
	return err == nil
}

// Claims verifies raw and returns its payload. Every failure is ErrInvalidToken.
func (i *Issuer) Claims(raw string) (*Claims, error) {
	var wc wireClaims
	tkn, err := jwt.ParseWithClaims(raw, &wc, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}

	accountID, err := strconv.ParseInt(wc.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return nil, ErrInvalidToken
	}

	c := &Claims{
		AccountID:    accountID,
		Email:        wc.Email,
		TokenVersion: int64(wc.TokenVersion),
		Purpose:      wc.Purpose,
	}
	if wc.IssuedAt != nil {
		c.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		c.ExpiresAt = wc.ExpiresAt.Time
	}
	return c, nil
}

func (i *Issuer) sign(accountID int64, email string, tokenVersion int64, purpose string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := wireClaims{
		Email:        email,
		TokenVersion: Version(tokenVersion),
		Purpose:      purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}
