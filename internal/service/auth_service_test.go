package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

// categoryWriteFailure fails every category write and delegates everything else.
type categoryWriteFailure struct {
	repository.UserRepository
}

func (categoryWriteFailure) ReplaceCategories(context.Context, int64, []domain.Category) error {
	return errors.New("disk I/O error")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.auth.Login(ctx, "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" || session.User.ID != env.alice.ID {
		t.Fatalf("session = %+v", session)
	}
	if len(session.User.Categories) != len(domain.AllCategories) {
		t.Fatalf("login should load categories, got %v", session.User.Categories)
	}

	claims, err := env.auth.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != env.alice.ID || claims.SeniorityLevel != 1 {
		t.Fatalf("claims = %+v", claims)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"wrong password", "alice@example.com", "nope", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "password123", http.StatusUnauthorized},
		{"missing fields", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(ctx, tt.email, tt.password)
			wantStatus(t, err, tt.want)
		})
	}

	_, err = env.auth.Verify("garbage")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	input := RegisterInput{
		Email: "erin@example.com", Password: "secret", Name: "Erin", SeniorityLevel: 4,
		Categories: []domain.Category{domain.CategoryPreSales},
	}

	_, err := env.auth.Register(ctx, env.bob, input)
	wantStatus(t, err, http.StatusForbidden)

	user, err := env.auth.Register(ctx, env.alice, input)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 || user.SeniorityLevel != 4 || len(user.Categories) != 1 {
		t.Fatalf("user = %+v", user)
	}

	_, err = env.auth.Register(ctx, env.alice, input)
	wantStatus(t, err, http.StatusConflict)

	bad := input
	bad.Email = "frank@example.com"
	bad.SeniorityLevel = 7
	_, err = env.auth.Register(ctx, env.alice, bad)
	wantStatus(t, err, http.StatusBadRequest)

	bad.SeniorityLevel = 3
	bad.Categories = []domain.Category{"Sales"}
	_, err = env.auth.Register(ctx, env.alice, bad)
	wantStatus(t, err, http.StatusBadRequest)

	me, err := env.auth.Me(ctx, user)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != "erin@example.com" || len(me.Categories) != 1 || me.Categories[0] != domain.CategoryPreSales {
		t.Fatalf("me = %+v", me)
	}

	if _, err := env.auth.Login(ctx, "erin@example.com", "secret"); err != nil {
		t.Fatalf("registered user should log in: %v", err)
	}
}

func TestProvisionRemovesUserWhenCategoriesFail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users := categoryWriteFailure{UserRepository: env.store.Users}
	svc := NewAuthService(config.AuthConfig{JWTSecret: "test", TokenTTLHours: 1, BcryptCost: 4}, AuthDependencies{
		UserRepo:    users,
		UserService: env.users,
	})

	_, err := svc.Provision(ctx, RegisterInput{
		Email: "erin@example.com", Password: "secret1", Name: "Erin", SeniorityLevel: 3,
		Categories: []domain.Category{domain.CategoryProjects},
	})
	wantStatus(t, err, http.StatusInternalServerError)

	if _, err := env.store.Users.GetByEmail(ctx, "erin@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("user should not survive a failed category write, GetByEmail err = %v", err)
	}

	if _, err := svc.Provision(ctx, RegisterInput{
		Email: "erin@example.com", Password: "secret1", Name: "Erin", SeniorityLevel: 3,
	}); err != nil {
		t.Fatalf("provision without categories: %v", err)
	}
}
