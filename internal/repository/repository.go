// Package repository declares the persistence contracts shared by the PostgreSQL and SQLite stores.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup or write targets a row that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey is returned when a write references a missing row or a delete would orphan one.
	ErrForeignKey = errors.New("invalid reference")
)

// UserFilter narrows user listings by seniority relative to a pivot rank.
type UserFilter struct {
	// MinRank keeps users whose seniority_level >= MinRank when > 0.
	MinRank int
	// RankAbove keeps users whose seniority_level > RankAbove when > 0.
	RankAbove int
}

// UserRepository stores users and their category memberships.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	UpdateSeniority(ctx context.Context, id int64, level int) error
	CountAtRank(ctx context.Context, level int, excludeID int64) (int, error)
	Categories(ctx context.Context, userID int64) ([]domain.Category, error)
	ReplaceCategories(ctx context.Context, userID int64, categories []domain.Category) error
	CountTaskReferences(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// TaskFilter captures the optional equality and search filters of the task listing.
type TaskFilter struct {
	// Categories restricts root tasks to these categories. Subtasks are not filtered by category.
	Categories []domain.Category
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssigneeID *int64
	Search     string
}

// TaskRepository stores tasks. Every read joins creator and assignee names and ranks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	// List returns matching tasks ordered by created_at descending.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// ListByAssignee orders by due date (nulls last) then priority high to low.
	ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Task, error)
	// ListByAssigneeRankAbove returns tasks whose assignee's rank is strictly greater than level.
	ListByAssigneeRankAbove(ctx context.Context, level int) ([]domain.Task, error)
	// ListChildren returns immediate children ordered by created_at ascending.
	ListChildren(ctx context.Context, parentID int64) ([]domain.Task, error)
	CountChildren(ctx context.Context, parentID int64) (int, error)
	// ListSubtree returns the task rooted at rootID and all of its descendants.
	ListSubtree(ctx context.Context, rootID int64) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	SetStatus(ctx context.Context, id int64, status domain.TaskStatus, completedAt *time.Time) error
	// MarkCompleted completes the task unless it already is, reporting whether a row changed.
	MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
}
