package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, displayName string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	profileFn  func(ctx context.Context, userID string) (*ports.UserProfile, error)
	resetFn    func(ctx context.Context, email, resetBaseURL string) error
	updateFn   func(ctx context.Context, resetToken, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, displayName)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*ports.UserProfile, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error {
	return s.resetFn(ctx, email, resetBaseURL)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	return s.updateFn(ctx, resetToken, newPassword)
}

func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, email, password, displayName string) (*domain.User, error) {
			if email != "ada@example.com" || displayName != "Ada" {
				t.Fatalf("unexpected args: %s %s", email, displayName)
			}
			return &domain.User{ID: "u1", Email: email, DisplayName: displayName}, nil
		},
	}
	h := NewAuthHandler(stub, "https://app.example.com")

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"longenough","display_name":"Ada"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["email"] != "ada@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Fatal("password hash must never be serialised")
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, "")

	// Password below the minimum length.
	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"short","display_name":"Ada"}`)
	if err := h.Register(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_DuplicateSurfacesSentinel(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, "")

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"longenough","display_name":"Ada"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to propagate, got: %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			return "signed.jwt.token", &domain.User{ID: "u1", Email: email}, nil
		},
	}
	h := NewAuthHandler(stub, "")

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/token",
		`{"email":"ada@example.com","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "signed.jwt.token" || resp["token_type"] != "bearer" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, "")

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/token",
		`{"email":"ada@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got: %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		profileFn: func(_ context.Context, userID string) (*ports.UserProfile, error) {
			return &ports.UserProfile{ID: userID, Email: "ada@example.com", Roles: []string{"free_user"}}, nil
		},
	}
	h := NewAuthHandler(stub, "")

	c, rec := newJSONContext(e, http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", "u1") // normally injected by the auth middleware
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, "")

	c, rec := newJSONContext(e, http.MethodGet, "/api/auth/me", "")
	if err := h.Me(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_RequestPasswordReset_NonRevealing(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(_ context.Context, email, baseURL string) error {
			if baseURL != "https://app.example.com" {
				t.Fatalf("unexpected base url: %q", baseURL)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, "https://app.example.com")

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/reset-password",
		`{"email":"ghost@example.com"}`)
	if err := h.RequestPasswordReset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	// Identical response for known and unknown addresses.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdatePassword_InvalidToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		updateFn: func(_ context.Context, _, _ string) error {
			return domain.ErrInvalidResetToken
		},
	}
	h := NewAuthHandler(stub, "")

	c, _ := newJSONContext(e, http.MethodPost, "/api/auth/update-password",
		`{"token":"stale","new_password":"longenough"}`)
	if err := h.UpdatePassword(c); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken to propagate, got: %v", err)
	}
}
