package seed_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/auth"
	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/persistence"
	"github.com/nxsys/task-tracker/internal/repository"
	"github.com/nxsys/task-tracker/internal/seed"
	"github.com/nxsys/task-tracker/internal/tasktree"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	store, err := persistence.Open(ctx, config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "seed.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	result, err := seed.Run(ctx, store.Users, store.Tasks, now, 4, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Users) != 5 || result.Tasks != 14 {
		t.Fatalf("seeded %d users and %d tasks", len(result.Users), result.Tasks)
	}

	ceo, err := store.Users.GetByEmail(ctx, "ceo@nxsys.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !ceo.IsAdmin() {
		t.Fatalf("ceo should be rank 1, got %d", ceo.SeniorityLevel)
	}
	if err := auth.ComparePassword(ceo.PasswordHash, seed.DefaultPassword); err != nil {
		t.Fatalf("sample password should verify: %v", err)
	}

	rows, err := store.Tasks.List(ctx, repository.TaskFilter{Categories: domain.AllCategories})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	forest := tasktree.BuildForest(rows)
	if len(forest) != 5 || tasktree.Count(forest) != 14 {
		t.Fatalf("forest has %d roots and %d tasks", len(forest), tasktree.Count(forest))
	}
	for _, root := range forest {
		if root.Task.Category == nil {
			t.Fatalf("root %q has no category", root.Task.Title)
		}
		if root.Task.Title == "Q1 Product Launch" && root.Task.StartDate.Format(domain.DateLayout) != "2024-03-05" {
			t.Fatalf("start date = %s", root.Task.StartDate.Format(domain.DateLayout))
		}
	}

	if _, err := seed.Run(ctx, store.Users, store.Tasks, now, 4, nil); !errors.Is(err, seed.ErrAlreadySeeded) {
		t.Fatalf("second run error = %v, want ErrAlreadySeeded", err)
	}
}
