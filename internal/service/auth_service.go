package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/auth"
	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/policy"
	"github.com/nxsys/task-tracker/internal/repository"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// AuthService coordinates login, registration and token verification.
type AuthService struct {
	users      repository.UserRepository
	profiles   *UserService
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	UserService  *UserService
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	SeniorityLevel int
	Categories     []domain.Category
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	}
	profiles := deps.UserService
	if profiles == nil {
		profiles = NewUserService(UserDependencies{UserRepo: deps.UserRepo, Logger: deps.Logger})
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		profiles:   profiles,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Tokens exposes the token manager for the bearer middleware.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates by email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewBadRequest("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, storeError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	if _, err := s.profiles.withCategories(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &domain.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Verify decodes a token into its identity claims.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}
	return claims, nil
}

// Register creates a user on behalf of a rank-1 actor.
func (s *AuthService) Register(ctx context.Context, actor *domain.User, input RegisterInput) (*domain.User, error) {
	if err := authorize(policy.OpManageUsers, policy.ActorFromUser(actor), policy.Resource{}); err != nil {
		return nil, err
	}
	user, err := s.Provision(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Int64("actor_id", actor.ID), zap.Int64("user_id", user.ID))
	return user, nil
}

// Provision validates and stores a new user without an authorization check. It backs Register
// and the bootstrap commands.
func (s *AuthService) Provision(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || input.Password == "" || input.Name == "" || input.SeniorityLevel == 0 {
		return nil, apperrors.NewBadRequest("email, password, name and seniority_level are required")
	}
	if !domain.ValidSeniority(input.SeniorityLevel) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("seniority_level must be between %d and %d",
			domain.MinSeniorityLevel, domain.MaxSeniorityLevel))
	}
	for _, c := range input.Categories {
		if !c.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid category %q", c))
		}
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:          input.Email,
		Name:           input.Name,
		PasswordHash:   hash,
		SeniorityLevel: input.SeniorityLevel,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, storeError(err, "user")
	}

	if len(input.Categories) > 0 {
		if err := s.users.ReplaceCategories(ctx, user.ID, input.Categories); err != nil {
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				s.logger.Error("failed to remove user after category write failed",
					zap.Int64("user_id", user.ID), zap.Error(delErr))
			}
			return nil, storeError(err, "user")
		}
	}
	user.Categories = append([]domain.Category{}, input.Categories...)
	return user, nil
}

// Me returns the current user with categories.
func (s *AuthService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	return s.profiles.Get(ctx, actor.ID)
}
