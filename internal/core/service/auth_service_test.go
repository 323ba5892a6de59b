package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
	"github.com/lumen-ai/api-platform/internal/core/token"
)

func newTestAuthService() (*AuthService, *stubAccountRepo, *token.Issuer) {
	repo := newStubAccountRepo()
	issuer := token.NewIssuer("secret", time.Hour)
	return NewAuthService(repo, issuer, zerolog.Nop()), repo, issuer
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, issuer := newTestAuthService()

	tok, account, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !account.Balance.IsZero() || account.TokenVersion != 0 {
		t.Fatalf("expected zero balance and version, got %s / %d", account.Balance, account.TokenVersion)
	}
	if repo.count() != 1 {
		t.Fatalf("expected one account, got %d", repo.count())
	}

	claims, err := issuer.Claims(tok)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.AccountID != account.ID || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	cases := map[string]ports.RegisterInput{
		"empty username": {Username: "", Email: "a@b.c", Password: "x"},
		"blank username": {Username: "   ", Email: "a@b.c", Password: "x"},
		"empty email":    {Username: "a", Email: "", Password: "x"},
		"empty password": {Username: "a", Email: "a@b.c", Password: ""},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), input)
			if !errors.Is(err, domain.ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			if errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("missing input must not read as a credential failure")
			}
		})
	}
	if repo.count() != 0 {
		t.Fatalf("rejected registrations created %d accounts", repo.count())
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.seed(&domain.Account{Email: "taken@example.com", Username: "taken"})

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "new", Email: "taken@example.com", Password: "p"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, _, err = svc.Register(context.Background(), ports.RegisterInput{Username: "taken", Email: "new@example.com", Password: "p"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, issuer := newTestAuthService()
	_, registered, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tok, account, err := svc.Login(context.Background(), "alice@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if account.ID != registered.ID {
		t.Fatalf("logged into wrong account: %d", account.ID)
	}
	if !issuer.Verify(tok) {
		t.Fatalf("expected a valid token")
	}

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "pass1234"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_LogoutBumpsTokenVersion(t *testing.T) {
	svc, repo, issuer := newTestAuthService()
	_, account, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pass1234"})

	if err := svc.Logout(context.Background(), account.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), account.ID)
	if stored.TokenVersion != 1 {
		t.Fatalf("expected token version 1, got %d", stored.TokenVersion)
	}

	tok, _, err := svc.Login(context.Background(), "alice@example.com", "pass1234")
	if err != nil {
		t.Fatalf("login after logout: %v", err)
	}
	claims, _ := issuer.Claims(tok)
	if claims.TokenVersion != 1 {
		t.Fatalf("expected new token to carry version 1, got %d", claims.TokenVersion)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	_, account, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "old-pass"})

	if err := svc.ChangePassword(context.Background(), account.ID, "old-pass", ""); !errors.Is(err, domain.ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), account.ID, "nope", "new-pass"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), account.ID)
	if stored.TokenVersion != 0 {
		t.Fatalf("failed change must not revoke sessions")
	}

	if err := svc.ChangePassword(context.Background(), account.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	stored, _ = repo.FindByID(context.Background(), account.ID)
	if stored.TokenVersion != 1 {
		t.Fatalf("expected token version 1, got %d", stored.TokenVersion)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "new-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.seed(&domain.Account{Email: "bob@example.com", Username: "bob"})
	_, alice, _ := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "p"})

	if _, err := svc.UpdateProfile(context.Background(), alice.ID, ports.UpdateProfileInput{Username: "bob"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), alice.ID, ports.UpdateProfileInput{Email: "bob@example.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), alice.ID, ports.UpdateProfileInput{Username: "alice2"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Username != "alice2" || updated.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}
