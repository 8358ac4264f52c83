package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/nxsys/task-tracker/internal/domain"
)

type countingCache struct {
	entries     map[int64][]domain.Category
	hits        int
	invalidated []int64
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[int64][]domain.Category{}}
}

func (c *countingCache) Get(_ context.Context, userID int64) ([]domain.Category, bool, error) {
	cats, ok := c.entries[userID]
	if ok {
		c.hits++
	}
	return cats, ok, nil
}

func (c *countingCache) Set(_ context.Context, userID int64, categories []domain.Category) error {
	c.entries[userID] = categories
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, userID int64) error {
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestUpdateSeniority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.UpdateSeniority(ctx, env.bob, env.dave.ID, 2)
	wantStatus(t, err, http.StatusForbidden)
	_, err = env.users.UpdateSeniority(ctx, env.alice, env.dave.ID, 6)
	wantStatus(t, err, http.StatusBadRequest)
	_, err = env.users.UpdateSeniority(ctx, env.alice, 9999, 2)
	wantStatus(t, err, http.StatusNotFound)

	_, err = env.users.UpdateSeniority(ctx, env.alice, env.alice.ID, 2)
	wantStatus(t, err, http.StatusBadRequest)

	promoted, err := env.users.UpdateSeniority(ctx, env.alice, env.bob.ID, 1)
	if err != nil {
		t.Fatalf("promote bob: %v", err)
	}
	if promoted.SeniorityLevel != 1 || len(promoted.Categories) != 1 {
		t.Fatalf("promoted = %+v", promoted)
	}

	demoted, err := env.users.UpdateSeniority(ctx, env.alice, env.alice.ID, 2)
	if err != nil {
		t.Fatalf("self-demotion with another admin present: %v", err)
	}
	if demoted.SeniorityLevel != 2 {
		t.Fatalf("seniority = %d", demoted.SeniorityLevel)
	}
}

func TestReplaceCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.ReplaceCategories(ctx, env.alice, env.carol.ID, []string{"Projects", "Sales"})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = env.users.ReplaceCategories(ctx, env.bob, env.carol.ID, []string{"Projects"})
	wantStatus(t, err, http.StatusForbidden)

	got, err := env.users.ReplaceCategories(ctx, env.alice, env.carol.ID, []string{"Projects", "Admin", "Projects"})
	if err != nil {
		t.Fatalf("ReplaceCategories: %v", err)
	}
	want := []domain.Category{domain.CategoryAdmin, domain.CategoryProjects}
	if len(got.Categories) != len(want) || got.Categories[0] != want[0] || got.Categories[1] != want[1] {
		t.Fatalf("categories = %v, want %v", got.Categories, want)
	}

	got, err = env.users.ReplaceCategories(ctx, env.alice, env.carol.ID, []string{})
	if err != nil {
		t.Fatalf("clear categories: %v", err)
	}
	if len(got.Categories) != 0 {
		t.Fatalf("categories should be cleared, got %v", got.Categories)
	}
}

func TestCategoryCacheReadThroughAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := newCountingCache()
	users := NewUserService(UserDependencies{UserRepo: env.store.Users, Cache: c})

	for i := 0; i < 2; i++ {
		cats, err := users.Categories(ctx, env.bob.ID)
		if err != nil {
			t.Fatalf("Categories: %v", err)
		}
		if len(cats) != 1 || cats[0] != domain.CategoryProjects {
			t.Fatalf("categories = %v", cats)
		}
	}
	if c.hits != 1 {
		t.Fatalf("second read should hit the cache, hits = %d", c.hits)
	}

	if _, err := users.ReplaceCategories(ctx, env.alice, env.bob.ID, []string{"Admin"}); err != nil {
		t.Fatalf("ReplaceCategories: %v", err)
	}
	if len(c.invalidated) != 1 || c.invalidated[0] != env.bob.ID {
		t.Fatalf("invalidated = %v", c.invalidated)
	}
	cats, err := users.Categories(ctx, env.bob.ID)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 || cats[0] != domain.CategoryAdmin {
		t.Fatalf("stale categories after replace: %v", cats)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, env.alice, TaskCreateInput{Title: "root", Category: strPtr("Projects"), AssignedTo: env.dave.ID})

	wantStatus(t, env.users.Delete(ctx, env.bob, env.carol.ID), http.StatusForbidden)
	wantStatus(t, env.users.Delete(ctx, env.alice, env.alice.ID), http.StatusBadRequest)
	wantStatus(t, env.users.Delete(ctx, env.alice, 9999), http.StatusNotFound)
	wantStatus(t, env.users.Delete(ctx, env.alice, env.dave.ID), http.StatusConflict)

	if err := env.tasks.Delete(ctx, env.alice, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := env.users.Delete(ctx, env.alice, env.dave.ID); err != nil {
		t.Fatalf("delete dave: %v", err)
	}
	_, err := env.users.Get(ctx, env.dave.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestUserListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, err := env.users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 || all[0].ID != env.alice.ID {
		t.Fatalf("list should hold 4 users, most senior first")
	}
	if len(all[0].Categories) != len(domain.AllCategories) {
		t.Fatalf("alice categories = %v", all[0].Categories)
	}

	juniors, err := env.users.ListJuniors(ctx, env.bob)
	if err != nil {
		t.Fatalf("ListJuniors: %v", err)
	}
	if len(juniors) != 1 || juniors[0].ID != env.dave.ID {
		t.Fatalf("juniors of bob = %+v", juniors)
	}

	assignable, err := env.users.ListAssignable(ctx, env.bob)
	if err != nil {
		t.Fatalf("ListAssignable: %v", err)
	}
	if len(assignable) != 3 {
		t.Fatalf("bob may assign to bob, carol and dave, got %d users", len(assignable))
	}
}
