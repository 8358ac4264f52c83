package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	user := &domain.User{ID: 7, Email: "dave@example.com", Name: "Dave", SeniorityLevel: 3}

	token, expiresAt, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if d := time.Until(expiresAt); d < 23*time.Hour || d > 25*time.Hour {
		t.Fatalf("default ttl should be 24h, expires in %v", d)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 7 || claims.Email != user.Email || claims.Name != "Dave" || claims.SeniorityLevel != 3 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: 1, Email: "a@example.com", Name: "A", SeniorityLevel: 1}

	valid, _, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name  string
		tm    *TokenManager
		token string
	}{
		{"wrong secret", NewTokenManager("other", time.Hour), valid},
		{"expired", tm, old},
		{"garbage", tm, "not-a-jwt"},
		{"alg none", tm, unsigned},
		{"tampered", tm, valid + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tm.ParseToken(tt.token); err == nil {
				t.Fatal("expected ParseToken to fail")
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal plaintext")
	}
	if err := ComparePassword(hash, "password123"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}

type stubUsers struct {
	repository.UserRepository
	users map[int64]*domain.User
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func newTestApp(tm *TokenManager, users repository.UserRepository) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.StatusOf(err))
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Name)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	admin := &domain.User{ID: 1, Name: "Alice", SeniorityLevel: 1}
	dev := &domain.User{ID: 3, Name: "Dave", SeniorityLevel: 3}
	gone := &domain.User{ID: 9, Name: "Gone", SeniorityLevel: 2}
	app := newTestApp(tm, &stubUsers{users: map[int64]*domain.User{1: admin, 3: dev}})

	token := func(u *domain.User) string {
		s, _, err := tm.GenerateToken(u)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		return s
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"deleted user", "/me", "Bearer " + token(gone), http.StatusUnauthorized},
		{"valid", "/me", "Bearer " + token(dev), http.StatusOK},
		{"lowercase scheme", "/me", "bearer " + token(dev), http.StatusOK},
		{"admin route as dev", "/admin", "Bearer " + token(dev), http.StatusForbidden},
		{"admin route as admin", "/admin", "Bearer " + token(admin), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
