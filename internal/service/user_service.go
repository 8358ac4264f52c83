package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/cache"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/policy"
	"github.com/nxsys/task-tracker/internal/repository"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// UserService manages users, their seniority and their category memberships.
type UserService struct {
	users  repository.UserRepository
	cache  cache.CategoryCache
	logger *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Cache    cache.CategoryCache
	Logger   *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	c := deps.Cache
	if c == nil {
		c = cache.NewCategoryCache(nil, 0)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: deps.UserRepo, cache: c, logger: logger}
}

// Categories resolves a user's category set, consulting the cache first. Cache failures fall
// through to the store.
func (s *UserService) Categories(ctx context.Context, userID int64) ([]domain.Category, error) {
	if cached, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.logger.Warn("category cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	categories, err := s.users.Categories(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if err := s.cache.Set(ctx, userID, categories); err != nil {
		s.logger.Warn("category cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return categories, nil
}

func (s *UserService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("category cache invalidation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *UserService) withCategories(ctx context.Context, user *domain.User) (*domain.User, error) {
	categories, err := s.Categories(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Categories = categories
	return user, nil
}

// List returns every user with their categories, most senior first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, storeError(err, "user")
	}
	for i := range users {
		if _, err := s.withCategories(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// ListJuniors returns users strictly more junior than the actor.
func (s *UserService) ListJuniors(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{RankAbove: actor.SeniorityLevel})
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

// ListAssignable returns users the actor may assign tasks to: same rank or more junior.
func (s *UserService) ListAssignable(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{MinRank: actor.SeniorityLevel})
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

// Get returns a user with categories.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return s.withCategories(ctx, user)
}

// UpdateSeniority changes a user's rank.
func (s *UserService) UpdateSeniority(ctx context.Context, actor *domain.User, id int64, level int) (*domain.User, error) {
	if err := authorize(policy.OpManageUsers, policy.ActorFromUser(actor), policy.Resource{TargetUserID: id}); err != nil {
		return nil, err
	}
	if !domain.ValidSeniority(level) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("seniority_level must be between %d and %d",
			domain.MinSeniorityLevel, domain.MaxSeniorityLevel))
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, storeError(err, "user")
	}

	if id == actor.ID && level != domain.AdminSeniority {
		others, err := s.users.CountAtRank(ctx, domain.AdminSeniority, actor.ID)
		if err != nil {
			return nil, storeError(err, "user")
		}
		if others == 0 {
			return nil, apperrors.NewBadRequest("cannot demote yourself - you are the only senior executive")
		}
	}

	if err := s.users.UpdateSeniority(ctx, id, level); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.Info("user seniority updated",
		zap.Int64("actor_id", actor.ID), zap.Int64("user_id", id), zap.Int("seniority_level", level))
	return s.Get(ctx, id)
}

// ReplaceCategories overwrites a user's category set.
func (s *UserService) ReplaceCategories(ctx context.Context, actor *domain.User, id int64, values []string) (*domain.User, error) {
	if err := authorize(policy.OpManageUsers, policy.ActorFromUser(actor), policy.Resource{TargetUserID: id}); err != nil {
		return nil, err
	}

	categories, err := ParseCategories(values)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, storeError(err, "user")
	}

	if err := s.users.ReplaceCategories(ctx, id, categories); err != nil {
		return nil, storeError(err, "user")
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

// Delete removes a user who is not referenced by any task.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := authorize(policy.OpDeleteUser, policy.ActorFromUser(actor), policy.Resource{TargetUserID: id}); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return storeError(err, "user")
	}

	refs, err := s.users.CountTaskReferences(ctx, id)
	if err != nil {
		return storeError(err, "user")
	}
	if refs > 0 {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot delete user with %d assigned or created task(s); reassign or delete them first", refs),
			map[string]any{"task_count": refs},
		)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "user")
	}
	s.invalidate(ctx, id)
	s.logger.Info("user deleted", zap.Int64("actor_id", actor.ID), zap.Int64("user_id", id))
	return nil
}

// ParseCategories validates category names, de-duplicates them and returns them sorted.
func ParseCategories(values []string) ([]domain.Category, error) {
	seen := map[domain.Category]bool{}
	var invalid []string
	categories := make([]domain.Category, 0, len(values))
	for _, v := range values {
		c := domain.Category(strings.TrimSpace(v))
		if !c.Valid() {
			invalid = append(invalid, v)
			continue
		}
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError(
			"invalid categories: "+strings.Join(invalid, ", "),
			map[string]any{"invalid": invalid, "allowed": domain.AllCategories},
		)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories, nil
}
