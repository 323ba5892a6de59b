package domain

import (
	"errors"
	"fmt"
)

// Account and credential errors.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrEmptyPassword      = errors.New("new password must not be empty")
)

// API key errors.
var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrInvalidStatus  = errors.New("invalid api key status")
)

// External identity errors.
var (
	ErrIdentityNotFound        = errors.New("external identity not found")
	ErrBindingNotFound         = errors.New("binding not found")
	ErrIdentityLinkedElsewhere = errors.New("this external account is already linked to another user")
	ErrProviderAlreadyBound    = errors.New("you already have a binding for this provider")
	ErrUnsupportedProvider     = errors.New("unsupported oauth provider")
	ErrInvalidBindState        = errors.New("bind request is invalid or has expired")
)

// Billing errors.
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

// ErrConflict is returned when the store rejects a write on a uniqueness
// constraint that has no more specific error.
var ErrConflict = errors.New("resource already exists")

// ProviderError reports a failed call to an OAuth provider.
type ProviderError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
