package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/lumen-ai/api-platform/internal/core/domain"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error)
	loginFn          func(ctx context.Context, email, password string) (string, *domain.Account, error)
	logoutFn         func(ctx context.Context, accountID int64) error
	meFn             func(ctx context.Context, accountID int64) (*domain.Account, error)
	updateProfileFn  func(ctx context.Context, accountID int64, input ports.UpdateProfileInput) (*domain.Account, error)
	changePasswordFn func(ctx context.Context, accountID int64, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, accountID int64) error {
	return s.logoutFn(ctx, accountID)
}

func (s *stubAuthService) Me(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.meFn(ctx, accountID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, accountID int64, input ports.UpdateProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, accountID, input)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	return s.changePasswordFn(ctx, accountID, current, next)
}

func alice() *domain.Account {
	return &domain.Account{
		ID:        1,
		Username:  "alice",
		Email:     "alice@example.com",
		Balance:   decimal.RequireFromString("12.5"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
			if input.Username != "alice" || input.Email != "alice@example.com" || input.Password != "secret1" {
				t.Fatalf("unexpected args: %+v", input)
			}
			return "token123", alice(), nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","password":"secret1","email":"alice@example.com"}`, 0)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["type"] != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["balance"] != "12.50" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
			return "", nil, domain.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"username":"bob","password":"secret1","email":"alice@example.com"}`, 0)

	if err := handler.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register", "not-json", 0)
	if err := handler.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"username":"al","password":"123","email":"not-an-email"}`, 0)

	err := handler.Register(c)
	assertHTTPError(t, err, http.StatusUnprocessableEntity)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.Account, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", alice(), nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret"}`, 0)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.User.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.Account, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"bad"}`, 0)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/login", "{", 0)
	if err := handler.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var loggedOut int64
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, accountID int64) error {
			loggedOut = accountID
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/logout", "", 7)
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || loggedOut != 7 {
		t.Fatalf("expected logout of account 7, got code %d account %d", rec.Code, loggedOut)
	}
}

func TestAuthHandler_RequiresPrincipal(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	for name, h := range map[string]echo.HandlerFunc{
		"logout":   handler.Logout,
		"me":       handler.Me,
		"profile":  handler.UpdateProfile,
		"password": handler.ChangePassword,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(e, http.MethodPost, "/", `{}`, 0)
			assertHTTPError(t, h(c), http.StatusUnauthorized)
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		meFn: func(ctx context.Context, accountID int64) (*domain.Account, error) {
			if accountID != 1 {
				t.Fatalf("unexpected account %d", accountID)
			}
			return alice(), nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodGet, "/api/auth/me", "", 1)
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp accountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 1 || resp.Email != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		updateProfileFn: func(ctx context.Context, accountID int64, input ports.UpdateProfileInput) (*domain.Account, error) {
			if input.Username != "alice2" || input.Email != "" {
				t.Fatalf("unexpected input: %+v", input)
			}
			a := alice()
			a.Username = input.Username
			return a, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPut, "/api/auth/profile", `{"username":"alice2"}`, 1)
	if err := handler.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		changePasswordFn: func(ctx context.Context, accountID int64, current, next string) error {
			if current != "old-pass" {
				return domain.ErrWrongPassword
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(e, http.MethodPut, "/api/auth/password", `{"current_password":"old-pass","new_password":"new-pass"}`, 1)
	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newJSONContext(e, http.MethodPut, "/api/auth/password", `{"current_password":"nope","new_password":"new-pass"}`, 1)
	if err := handler.ChangePassword(c); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	c, _ = newJSONContext(e, http.MethodPut, "/api/auth/password", `{"current_password":"old-pass","new_password":"123"}`, 1)
	assertHTTPError(t, handler.ChangePassword(c), http.StatusUnprocessableEntity)
}
