package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
	"github.com/lumen-ai/api-platform/internal/core/token"
)

const (
	// BindStatePrefix marks an OAuth state that carries a signed bind token.
	BindStatePrefix = "bind:"

	defaultProviderTimeout = 10 * time.Second
	compensationTimeout    = 5 * time.Second
	placeholderDomain      = "placeholder.local"
	maxSuffixAttempts      = 5
)

var errNoProfileID = errors.New("profile has no user id")

// IdentityLinker resolves OAuth callbacks into a login, a new account or a
// binding on an existing account.
type IdentityLinker struct {
	accounts   ports.AccountRepository
	identities ports.IdentityRepository
	tokens     ports.TokenIssuer
	providers  map[domain.Provider]ports.OAuthProvider
	gen        *Generator
	timeout    time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

func NewIdentityLinker(
	accounts ports.AccountRepository,
	identities ports.IdentityRepository,
	tokens ports.TokenIssuer,
	gen *Generator,
	providerTimeout time.Duration,
	logger zerolog.Logger,
	providers ...ports.OAuthProvider,
) *IdentityLinker {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	if providerTimeout <= 0 {
		providerTimeout = defaultProviderTimeout
	}
	byName := make(map[domain.Provider]ports.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &IdentityLinker{
		accounts:   accounts,
		identities: identities,
		tokens:     tokens,
		providers:  byName,
		gen:        gen,
		timeout:    providerTimeout,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *IdentityLinker) provider(name domain.Provider) (ports.OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}
	return p, nil
}

// AuthorizationURL returns the provider redirect. When bindFor is set the state
// carries a short-lived signed bind token for that account.
func (s *IdentityLinker) AuthorizationURL(ctx context.Context, name domain.Provider, bindFor *int64) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}

	state := ""
	if bindFor != nil {
		account, err := s.accounts.FindByID(ctx, *bindFor)
		if err != nil {
			return "", err
		}
		bindToken, err := s.tokens.IssueBind(account.ID, account.Email, account.TokenVersion)
		if err != nil {
			return "", fmt.Errorf("issue bind token: %w", err)
		}
		state = BindStatePrefix + bindToken
	}

	return p.AuthCodeURL(state), nil
}

// Callback exchanges code, fetches the provider profile and resolves it.
func (s *IdentityLinker) Callback(ctx context.Context, name domain.Provider, code, state string) (*ports.LinkResult, error) {
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}

	bindAccount, err := s.resolveBindIntent(ctx, state)
	if err != nil {
		return nil, err
	}

	profile, accessToken, err := s.fetchProfile(ctx, p, code)
	if err != nil {
		return nil, err
	}

	existing, err := s.identities.FindByProviderUser(ctx, name, profile.ID)
	if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, err
	}

	switch {
	case bindAccount != nil:
		return s.bind(ctx, bindAccount, name, profile, accessToken, existing)
	case existing != nil:
		return s.loginExisting(ctx, existing, profile, accessToken)
	default:
		return s.provision(ctx, name, profile, accessToken)
	}
}

// resolveBindIntent returns the account a callback must bind to, or nil for a
// plain login. A state that claims bind intent but does not verify is rejected.
func (s *IdentityLinker) resolveBindIntent(ctx context.Context, state string) (*domain.Account, error) {
	if state == strings.TrimSuffix(BindStatePrefix, ":") {
		return nil, domain.ErrInvalidBindState
	}
	if !strings.HasPrefix(state, BindStatePrefix) {
		return nil, nil
	}

	claims, err := s.tokens.Claims(strings.TrimPrefix(state, BindStatePrefix))
	if err != nil || claims.Purpose != token.PurposeBind {
		return nil, domain.ErrInvalidBindState
	}

	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidBindState
		}
		return nil, err
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, domain.ErrInvalidBindState
	}
	return account, nil
}

func (s *IdentityLinker) fetchProfile(ctx context.Context, p ports.OAuthProvider, code string) (*domain.ProviderProfile, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if code == "" {
		return nil, "", &domain.ProviderError{Provider: p.Name(), Op: "token exchange", Err: errors.New("missing authorization code")}
	}

	accessToken, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: p.Name(), Op: "token exchange", Err: err}
	}

	profile, err := p.Profile(ctx, accessToken)
	if err != nil {
		return nil, "", &domain.ProviderError{Provider: p.Name(), Op: "profile fetch", Err: err}
	}
	if profile == nil || profile.ID == "" {
		return nil, "", &domain.ProviderError{Provider: p.Name(), Op: "profile fetch", Err: errNoProfileID}
	}
	return profile, accessToken, nil
}

func (s *IdentityLinker) bind(
	ctx context.Context,
	account *domain.Account,
	name domain.Provider,
	profile *domain.ProviderProfile,
	accessToken string,
	existing *domain.ExternalIdentity,
) (*ports.LinkResult, error) {
	if existing != nil {
		if existing.AccountID != account.ID {
			return nil, domain.ErrIdentityLinkedElsewhere
		}
		return nil, domain.ErrProviderAlreadyBound
	}

	_, err := s.identities.FindByAccountAndProvider(ctx, account.ID, name)
	switch {
	case err == nil:
		return nil, domain.ErrProviderAlreadyBound
	case !errors.Is(err, domain.ErrIdentityNotFound):
		return nil, err
	}

	now := s.now().UTC()
	if _, err := s.identities.Create(ctx, &domain.ExternalIdentity{
		AccountID:      account.ID,
		Provider:       name,
		ProviderUserID: profile.ID,
		AccessToken:    accessToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		return nil, err
	}

	s.backfillAvatar(ctx, account, profile)

	s.logger.Info().
		Int64("account_id", account.ID).
		Str("provider", string(name)).
		Msg("external identity bound")

	return &ports.LinkResult{Outcome: ports.OutcomeBound, Account: account}, nil
}

func (s *IdentityLinker) loginExisting(
	ctx context.Context,
	identity *domain.ExternalIdentity,
	profile *domain.ProviderProfile,
	accessToken string,
) (*ports.LinkResult, error) {
	account, err := s.accounts.FindByID(ctx, identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load identity owner %d: %w", identity.AccountID, err)
	}

	if err := s.identities.UpdateAccessToken(ctx, identity.ID, accessToken); err != nil {
		return nil, err
	}
	s.backfillAvatar(ctx, account, profile)

	sessionToken, err := s.tokens.Issue(account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.LinkResult{Outcome: ports.OutcomeLoggedIn, Account: account, Token: sessionToken}, nil
}

func (s *IdentityLinker) provision(
	ctx context.Context,
	name domain.Provider,
	profile *domain.ProviderProfile,
	accessToken string,
) (*ports.LinkResult, error) {
	username, err := s.uniqueUsername(ctx, name, profile)
	if err != nil {
		return nil, err
	}
	email, err := s.uniqueEmail(ctx, name, profile)
	if err != nil {
		return nil, err
	}

	secret, err := s.gen.String(alphanumeric, 32)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account, err := s.accounts.Create(ctx, &domain.Account{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Balance:      decimal.Zero,
		AvatarURL:    profile.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.identities.Create(ctx, &domain.ExternalIdentity{
		AccountID:      account.ID,
		Provider:       name,
		ProviderUserID: profile.ID,
		AccessToken:    accessToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		s.removeProvisioned(ctx, account.ID)
		return nil, err
	}

	sessionToken, err := s.tokens.Issue(account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Str("provider", string(name)).
		Str("username", username).
		Msg("account provisioned from external identity")

	return &ports.LinkResult{Outcome: ports.OutcomeLoggedIn, Account: account, Token: sessionToken, NewAccount: true}, nil
}

// removeProvisioned deletes an account whose identity insert failed. The
// delete must outlive a cancelled or expired request context.
func (s *IdentityLinker) removeProvisioned(ctx context.Context, accountID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		s.logger.Error().Err(err).Int64("account_id", accountID).Msg("failed to remove provisioned account")
	}
}

// uniqueUsername uses the provider handle, appending "_" and a random suffix
// while the candidate is taken.
func (s *IdentityLinker) uniqueUsername(ctx context.Context, name domain.Provider, profile *domain.ProviderProfile) (string, error) {
	base := strings.TrimSpace(profile.Login)
	if base == "" {
		base = fmt.Sprintf("%s_%s", name, profile.ID)
	}

	candidate := base
	for attempt := 0; attempt <= maxSuffixAttempts; attempt++ {
		taken, err := s.accounts.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix, err := s.gen.Suffix()
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		candidate = base + "_" + suffix
	}
	return "", domain.ErrUsernameTaken
}

// uniqueEmail uses the profile email, falling back to a provider scoped
// placeholder that is further disambiguated with a millisecond timestamp.
func (s *IdentityLinker) uniqueEmail(ctx context.Context, name domain.Provider, profile *domain.ProviderProfile) (string, error) {
	email := strings.TrimSpace(profile.Email)
	if email == "" {
		email = fmt.Sprintf("%s_%s@%s", name, profile.ID, placeholderDomain)
	}

	taken, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !taken {
		return email, nil
	}

	email = fmt.Sprintf("%s_%s_%d@%s", name, profile.ID, s.now().UnixMilli(), placeholderDomain)
	taken, err = s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.ErrEmailTaken
	}
	return email, nil
}

func (s *IdentityLinker) backfillAvatar(ctx context.Context, account *domain.Account, profile *domain.ProviderProfile) {
	if account.HasAvatar() || profile.AvatarURL == "" {
		return
	}
	if err := s.accounts.SetAvatarIfEmpty(ctx, account.ID, profile.AvatarURL); err != nil {
		s.logger.Warn().Err(err).Int64("account_id", account.ID).Msg("avatar backfill failed")
		return
	}
	account.AvatarURL = profile.AvatarURL
}

// Bindings lists the caller's own external identities.
func (s *IdentityLinker) Bindings(ctx context.Context, accountID int64) ([]*domain.ExternalIdentity, error) {
	return s.identities.ListByAccount(ctx, accountID)
}

// Unbind removes the caller's binding for a provider.
func (s *IdentityLinker) Unbind(ctx context.Context, accountID int64, name domain.Provider) error {
	if _, err := s.provider(name); err != nil {
		return err
	}
	if err := s.identities.DeleteByAccountAndProvider(ctx, accountID, name); err != nil {
		return err
	}
	s.logger.Info().Int64("account_id", accountID).Str("provider", string(name)).Msg("external identity unbound")
	return nil
}
