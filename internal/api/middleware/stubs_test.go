package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type accountStoreStub struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	err      error
}

func newAccountStoreStub(accounts ...*domain.Account) *accountStoreStub {
	s := &accountStoreStub{accounts: map[int64]*domain.Account{}}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *accountStoreStub) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *accountStoreStub) bumpVersion(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id].TokenVersion++
}

type keyStoreStub struct {
	mu       sync.Mutex
	keys     map[string]*domain.APIKey
	touched  map[int64]time.Time
	touchErr error
}

func newKeyStoreStub() *keyStoreStub {
	return &keyStoreStub{keys: map[string]*domain.APIKey{}, touched: map[int64]time.Time{}}
}

func (s *keyStoreStub) add(raw string, key *domain.APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key.KeyHash = domain.HashAPIKey(raw)
	s.keys[key.KeyHash] = key
}

func (s *keyStoreStub) setStatus(raw string, status domain.APIKeyStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[domain.HashAPIKey(raw)].Status = status
}

func (s *keyStoreStub) remove(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, domain.HashAPIKey(raw))
}

func (s *keyStoreStub) FindByHash(_ context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyHash]
	if !ok {
		return nil, domain.ErrAPIKeyNotFound
	}
	cp := *k
	return &cp, nil
}

func (s *keyStoreStub) TouchLastUsed(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return s.touchErr
	}
	s.touched[id] = at
	return nil
}

// newContext builds an echo context for path with an optional bearer credential.
func newContext(e *echo.Echo, method, path, bearer string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
