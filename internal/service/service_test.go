package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/events"
	"github.com/nxsys/task-tracker/internal/persistence"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

type testEnv struct {
	store  *persistence.Store
	users  *UserService
	auth   *AuthService
	tasks  *TaskService
	events []events.Event

	alice *domain.User // rank 1
	bob   *domain.User // rank 2
	carol *domain.User // rank 2
	dave  *domain.User // rank 3
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := persistence.Open(ctx, config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "service.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{store: store}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventTaskCreated, events.EventTaskUpdated, events.EventTaskStatusChanged,
		events.EventTaskAutoCompleted, events.EventTaskDeleted,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			env.events = append(env.events, e)
			return nil
		})
	}

	env.users = NewUserService(UserDependencies{UserRepo: store.Users})
	env.auth = NewAuthService(config.AuthConfig{JWTSecret: "test", TokenTTLHours: 24, BcryptCost: 4}, AuthDependencies{
		UserRepo:    store.Users,
		UserService: env.users,
	})
	env.tasks = NewTaskService(TaskDependencies{
		TaskRepo:   store.Tasks,
		UserRepo:   store.Users,
		Categories: env.users,
		Dispatcher: dispatcher,
	})

	all := domain.AllCategories
	env.alice = env.provision(t, "alice@example.com", "Alice", 1, all)
	env.bob = env.provision(t, "bob@example.com", "Bob", 2, []domain.Category{domain.CategoryProjects})
	env.carol = env.provision(t, "carol@example.com", "Carol", 2, nil)
	env.dave = env.provision(t, "dave@example.com", "Dave", 3, []domain.Category{domain.CategoryProjects})
	return env
}

func (e *testEnv) provision(t *testing.T, email, name string, level int, cats []domain.Category) *domain.User {
	t.Helper()
	u, err := e.auth.Provision(context.Background(), RegisterInput{
		Email: email, Password: "password123", Name: name, SeniorityLevel: level, Categories: cats,
	})
	if err != nil {
		t.Fatalf("provision %s: %v", email, err)
	}
	return u
}

func (e *testEnv) countEvents(et events.EventType) int {
	n := 0
	for _, ev := range e.events {
		if ev.Type == et {
			n++
		}
	}
	return n
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return &d
}

func strPtr(s string) *string { return &s }

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	if got := apperrors.StatusOf(err); got != status {
		t.Fatalf("status = %d (%v), want %d", got, err, status)
	}
}

func (e *testEnv) mustCreate(t *testing.T, actor *domain.User, input TaskCreateInput) *domain.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), actor, input)
	if err != nil {
		t.Fatalf("create %q: %v", input.Title, err)
	}
	return task
}
