package service

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Account store
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu        sync.Mutex
	nextID    int64
	accounts  map[int64]*domain.Account
	createErr error
	deleted   []int64
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// seed inserts an account directly, bypassing uniqueness checks.
func (r *stubAccountRepo) seed(a *domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	r.accounts[a.ID] = cloneAccount(a)
	return cloneAccount(a)
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
		if existing.Username == a.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	created := cloneAccount(a)
	created.ID = r.nextID
	r.accounts[created.ID] = created
	return cloneAccount(created), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id int64, username, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Username, a.Email = username, email
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	a.TokenVersion++
	return nil
}

func (r *stubAccountRepo) IncrementTokenVersion(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	a.TokenVersion++
	return a.TokenVersion, nil
}

func (r *stubAccountRepo) SetAvatarIfEmpty(_ context.Context, id int64, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.AvatarURL == "" {
		a.AvatarURL = avatarURL
	}
	return nil
}

func (r *stubAccountRepo) AddBalance(_ context.Context, id int64, amount decimal.Decimal) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(amount)
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// ---------------------------------------------------------------------------
// Identity store
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu         sync.Mutex
	nextID     int64
	identities map[int64]*domain.ExternalIdentity
	createErr  error

	// beforeCreate runs ahead of every insert, e.g. to cancel the caller.
	beforeCreate func()
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{identities: make(map[int64]*domain.ExternalIdentity)}
}

func cloneIdentity(i *domain.ExternalIdentity) *domain.ExternalIdentity {
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) Create(ctx context.Context, i *domain.ExternalIdentity) (*domain.ExternalIdentity, error) {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.identities {
		if existing.Provider == i.Provider && existing.ProviderUserID == i.ProviderUserID {
			return nil, domain.ErrIdentityLinkedElsewhere
		}
		if existing.AccountID == i.AccountID && existing.Provider == i.Provider {
			return nil, domain.ErrProviderAlreadyBound
		}
	}
	r.nextID++
	created := cloneIdentity(i)
	created.ID = r.nextID
	r.identities[created.ID] = created
	return cloneIdentity(created), nil
}

func (r *stubIdentityRepo) FindByProviderUser(_ context.Context, p domain.Provider, providerUserID string) (*domain.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.identities {
		if i.Provider == p && i.ProviderUserID == providerUserID {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByAccountAndProvider(_ context.Context, accountID int64, p domain.Provider) (*domain.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.identities {
		if i.AccountID == accountID && i.Provider == p {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) ListByAccount(_ context.Context, accountID int64) ([]*domain.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ExternalIdentity
	for _, i := range r.identities {
		if i.AccountID == accountID {
			out = append(out, cloneIdentity(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *stubIdentityRepo) UpdateAccessToken(_ context.Context, id int64, accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.identities[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.AccessToken = accessToken
	return nil
}

func (r *stubIdentityRepo) DeleteByAccountAndProvider(_ context.Context, accountID int64, p domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, i := range r.identities {
		if i.AccountID == accountID && i.Provider == p {
			delete(r.identities, id)
			return nil
		}
	}
	return domain.ErrBindingNotFound
}

func (r *stubIdentityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.identities)
}

// ---------------------------------------------------------------------------
// API key store
// ---------------------------------------------------------------------------

type stubAPIKeyRepo struct {
	mu     sync.Mutex
	nextID int64
	keys   map[int64]*domain.APIKey
}

func newStubAPIKeyRepo() *stubAPIKeyRepo {
	return &stubAPIKeyRepo{keys: make(map[int64]*domain.APIKey)}
}

func cloneKey(k *domain.APIKey) *domain.APIKey {
	clone := *k
	return &clone
}

func (r *stubAPIKeyRepo) Create(_ context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.keys {
		if existing.KeyHash == k.KeyHash {
			return nil, domain.ErrConflict
		}
	}
	r.nextID++
	created := cloneKey(k)
	created.ID = r.nextID
	r.keys[created.ID] = created
	return cloneKey(created), nil
}

func (r *stubAPIKeyRepo) FindByHash(_ context.Context, keyHash string) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.KeyHash == keyHash {
			return cloneKey(k), nil
		}
	}
	return nil, domain.ErrAPIKeyNotFound
}

func (r *stubAPIKeyRepo) ListByAccount(_ context.Context, accountID int64) ([]*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.APIKey
	for _, k := range r.keys {
		if k.AccountID == accountID {
			out = append(out, cloneKey(k))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *stubAPIKeyRepo) SetStatus(_ context.Context, accountID, id int64, status domain.APIKeyStatus) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok || k.AccountID != accountID {
		return nil, domain.ErrAPIKeyNotFound
	}
	k.Status = status
	return cloneKey(k), nil
}

func (r *stubAPIKeyRepo) Delete(_ context.Context, accountID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok || k.AccountID != accountID {
		return domain.ErrAPIKeyNotFound
	}
	delete(r.keys, id)
	return nil
}

func (r *stubAPIKeyRepo) TouchLastUsed(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return domain.ErrAPIKeyNotFound
	}
	k.LastUsedAt = &at
	return nil
}

// ---------------------------------------------------------------------------
// Billing store
// ---------------------------------------------------------------------------

type stubBillingRepo struct {
	mu      sync.Mutex
	records []*domain.BillingRecord
	usage   map[int64]*domain.UsageStats
}

func newStubBillingRepo() *stubBillingRepo {
	return &stubBillingRepo{usage: make(map[int64]*domain.UsageStats)}
}

func (r *stubBillingRepo) AppendRecord(_ context.Context, rec *domain.BillingRecord) (*domain.BillingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	clone.ID = int64(len(r.records) + 1)
	r.records = append(r.records, &clone)
	return &clone, nil
}

func (r *stubBillingRepo) ListRecords(_ context.Context, accountID int64) ([]*domain.BillingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BillingRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].AccountID == accountID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *stubBillingRepo) AddUsage(_ context.Context, accountID, prompt, completion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usage[accountID]
	if !ok {
		u = &domain.UsageStats{AccountID: accountID}
		r.usage[accountID] = u
	}
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += prompt + completion
	u.RequestCount++
	return nil
}

func (r *stubBillingRepo) GetUsage(_ context.Context, accountID int64) (*domain.UsageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.usage[accountID]; ok {
		clone := *u
		return &clone, nil
	}
	return &domain.UsageStats{AccountID: accountID}, nil
}

// ---------------------------------------------------------------------------
// OAuth provider
// ---------------------------------------------------------------------------

type stubProvider struct {
	name        domain.Provider
	tokens      map[string]string
	profiles    map[string]*domain.ProviderProfile
	exchangeErr error
	profileErr  error
	exchanges   int
}

func newStubProvider(name domain.Provider) *stubProvider {
	return &stubProvider{
		name:     name,
		tokens:   make(map[string]string),
		profiles: make(map[string]*domain.ProviderProfile),
	}
}

// willReturn registers a code whose exchange yields a token for profile.
func (p *stubProvider) willReturn(code string, profile *domain.ProviderProfile) {
	tok := "gho_" + code
	p.tokens[code] = tok
	p.profiles[tok] = profile
}

func (p *stubProvider) Name() domain.Provider { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	v := url.Values{}
	v.Set("client_id", "client-123")
	if state != "" {
		v.Set("state", state)
	}
	return "https://provider.test/authorize?" + v.Encode()
}

func (p *stubProvider) Exchange(_ context.Context, code string) (string, error) {
	p.exchanges++
	if p.exchangeErr != nil {
		return "", p.exchangeErr
	}
	tok, ok := p.tokens[code]
	if !ok {
		return "", errors.New("bad_verification_code")
	}
	return tok, nil
}

func (p *stubProvider) Profile(_ context.Context, accessToken string) (*domain.ProviderProfile, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	profile, ok := p.profiles[accessToken]
	if !ok {
		return nil, errors.New("bad credentials")
	}
	clone := *profile
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Usage sink
// ---------------------------------------------------------------------------

type stubSink struct {
	mu     sync.Mutex
	queued []ports.UsageInput
}

func (s *stubSink) Enqueue(u ports.UsageInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, u)
}
