// Package seed loads the sample organisation used for demos and local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/auth"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

// DefaultPassword is shared by every sample account.
const DefaultPassword = "password123"

// ErrAlreadySeeded is returned when a sample account already exists.
var ErrAlreadySeeded = errors.New("sample data already present")

type userSeed struct {
	Email      string
	Name       string
	Level      int
	Categories []domain.Category
}

type taskSeed struct {
	Title       string
	Description string
	StartOffset int // days relative to today
	DueOffset   int
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
	Category    domain.Category
	Creator     string
	Assignee    string
	Subtasks    []taskSeed
}

var sampleUsers = []userSeed{
	{"ceo@nxsys.com", "Alice Chen", 1, domain.AllCategories},
	{"manager1@nxsys.com", "Bob Martinez", 2, []domain.Category{domain.CategoryProjects, domain.CategoryPreSales}},
	{"manager2@nxsys.com", "Carol Johnson", 2, []domain.Category{domain.CategoryAdmin, domain.CategoryMiscellaneous}},
	{"dev1@nxsys.com", "David Kim", 3, []domain.Category{domain.CategoryProjects, domain.CategoryAdmin}},
	{"dev2@nxsys.com", "Emma Wilson", 3, []domain.Category{domain.CategoryProjects, domain.CategoryPreSales, domain.CategoryMiscellaneous}},
}

var sampleTasks = []taskSeed{
	{
		Title: "Q1 Product Launch", Description: "Complete all preparations for the Q1 product launch including development, testing, and marketing.",
		StartOffset: -10, DueOffset: 30, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
		Category: domain.CategoryProjects, Creator: "Alice Chen", Assignee: "Bob Martinez",
		Subtasks: []taskSeed{
			{
				Title: "Backend API Development", Description: "Develop all required REST APIs for the new product features.",
				StartOffset: -8, DueOffset: 14, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
				Creator: "Bob Martinez", Assignee: "David Kim",
				Subtasks: []taskSeed{
					{
						Title: "User Authentication API", Description: "Implement JWT-based authentication endpoints.",
						StartOffset: -7, DueOffset: 5, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusCompleted,
						Creator: "David Kim", Assignee: "David Kim",
					},
					{
						Title: "Product Catalog API", Description: "Build CRUD endpoints for product management.",
						StartOffset: -5, DueOffset: -2, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
						Creator: "David Kim", Assignee: "David Kim",
					},
				},
			},
			{
				Title: "Frontend Development", Description: "Build React components for the new product pages.",
				StartOffset: -5, DueOffset: 20, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
				Creator: "Bob Martinez", Assignee: "Emma Wilson",
				Subtasks: []taskSeed{
					{
						Title: "Product List Page", Description: "Create responsive product listing with filters and search.",
						StartOffset: 0, DueOffset: 10, Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusNotStarted,
						Creator: "Emma Wilson", Assignee: "Emma Wilson",
					},
				},
			},
		},
	},
	{
		Title: "Security Audit", Description: "Conduct comprehensive security review of all systems.",
		StartOffset: -15, DueOffset: -5, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
		Category: domain.CategoryAdmin, Creator: "Alice Chen", Assignee: "Carol Johnson",
		Subtasks: []taskSeed{
			{
				Title: "Penetration Testing", Description: "Perform penetration testing on production systems.",
				StartOffset: -14, DueOffset: -3, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusCompleted,
				Creator: "Carol Johnson", Assignee: "David Kim",
			},
			{
				Title: "Code Review", Description: "Review codebase for security vulnerabilities.",
				StartOffset: -10, DueOffset: 3, Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusNotStarted,
				Creator: "Carol Johnson", Assignee: "Emma Wilson",
			},
		},
	},
	{
		Title: "Documentation Update", Description: "Update all technical documentation for the new release.",
		StartOffset: 5, DueOffset: 25, Priority: domain.TaskPriorityLow, Status: domain.TaskStatusNotStarted,
		Category: domain.CategoryMiscellaneous, Creator: "Bob Martinez", Assignee: "Emma Wilson",
	},
	{
		Title: "Database Optimization", Description: "Optimize database queries and indexes for better performance.",
		StartOffset: -3, DueOffset: 15, Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusNotStarted,
		Category: domain.CategoryAdmin, Creator: "Alice Chen", Assignee: "Carol Johnson",
		Subtasks: []taskSeed{
			{
				Title: "Query Analysis", Description: "Analyze slow queries and identify optimization opportunities.",
				StartOffset: -2, DueOffset: 7, Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusInProgress,
				Creator: "Carol Johnson", Assignee: "David Kim",
			},
		},
	},
	{
		Title: "Client Demo Preparation", Description: "Prepare demo environment and materials for upcoming client presentation.",
		StartOffset: -2, DueOffset: 10, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusInProgress,
		Category: domain.CategoryPreSales, Creator: "Alice Chen", Assignee: "Bob Martinez",
		Subtasks: []taskSeed{
			{
				Title: "Demo Environment Setup", Description: "Set up isolated demo environment with sample data.",
				StartOffset: 0, DueOffset: 5, Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusNotStarted,
				Creator: "Bob Martinez", Assignee: "David Kim",
			},
		},
	},
}

// Result summarises what Run wrote.
type Result struct {
	Users []domain.User
	Tasks int
}

// Run inserts the sample users and task trees. Dates are laid out relative to now.
func Run(ctx context.Context, users repository.UserRepository, tasks repository.TaskRepository, now time.Time, bcryptCost int, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, u := range sampleUsers {
		if _, err := users.GetByEmail(ctx, u.Email); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadySeeded, u.Email)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(DefaultPassword, bcryptCost)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	ids := make(map[string]int64, len(sampleUsers))
	for _, u := range sampleUsers {
		user := &domain.User{Email: u.Email, Name: u.Name, PasswordHash: hash, SeniorityLevel: u.Level}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		if err := users.ReplaceCategories(ctx, user.ID, u.Categories); err != nil {
			return nil, fmt.Errorf("assign categories to %s: %w", u.Email, err)
		}
		user.Categories = u.Categories
		ids[u.Name] = user.ID
		result.Users = append(result.Users, *user)
		logger.Info("seeded user", zap.String("email", u.Email), zap.Int("seniority_level", u.Level))
	}

	today := domain.DateOnly(now.UTC())
	type pending struct {
		seed     *taskSeed
		parentID *int64
	}
	queue := make([]pending, 0, len(sampleTasks))
	for i := range sampleTasks {
		queue = append(queue, pending{seed: &sampleTasks[i]})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		s := p.seed

		start := today.AddDate(0, 0, s.StartOffset)
		due := today.AddDate(0, 0, s.DueOffset)
		description := s.Description
		task := &domain.Task{
			Title:        s.Title,
			Description:  &description,
			StartDate:    &start,
			DueDate:      &due,
			Priority:     s.Priority,
			Status:       s.Status,
			CreatedBy:    ids[s.Creator],
			AssignedTo:   ids[s.Assignee],
			ParentTaskID: p.parentID,
		}
		if p.parentID == nil {
			category := s.Category
			task.Category = &category
		}
		if s.Status == domain.TaskStatusCompleted {
			completed := now.UTC()
			task.CompletedAt = &completed
		}
		if err := tasks.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("create task %q: %w", s.Title, err)
		}
		result.Tasks++

		id := task.ID
		for i := range s.Subtasks {
			queue = append(queue, pending{seed: &s.Subtasks[i], parentID: &id})
		}
	}

	logger.Info("sample data loaded", zap.Int("users", len(result.Users)), zap.Int("tasks", result.Tasks))
	return result, nil
}
