package tasktree

import (
	"context"
	"testing"
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
)

func TestAllDescendantsCompleted(t *testing.T) {
	tests := []struct {
		name string
		rows []domain.Task
		want bool
	}{
		{
			name: "leaf is vacuously complete",
			rows: []domain.Task{task(1, nil, domain.TaskStatusNotStarted)},
			want: true,
		},
		{
			name: "all children and grandchildren completed",
			rows: []domain.Task{
				task(1, nil, domain.TaskStatusInProgress),
				task(2, ptr(1), domain.TaskStatusCompleted),
				task(3, ptr(2), domain.TaskStatusCompleted),
				task(4, ptr(1), domain.TaskStatusCompleted),
			},
			want: true,
		},
		{
			name: "incomplete direct child",
			rows: []domain.Task{
				task(1, nil, domain.TaskStatusInProgress),
				task(2, ptr(1), domain.TaskStatusCompleted),
				task(4, ptr(1), domain.TaskStatusInProgress),
			},
			want: false,
		},
		{
			name: "completed child with incomplete grandchild",
			rows: []domain.Task{
				task(1, nil, domain.TaskStatusInProgress),
				task(2, ptr(1), domain.TaskStatusCompleted),
				task(3, ptr(2), domain.TaskStatusNotStarted),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Find(BuildForest(tt.rows), 1)
			if got := AllDescendantsCompleted(root); got != tt.want {
				t.Fatalf("AllDescendantsCompleted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllDescendantsCompletedHandlesCycles(t *testing.T) {
	a := &Node{Task: task(1, nil, domain.TaskStatusCompleted)}
	b := &Node{Task: task(2, ptr(1), domain.TaskStatusCompleted)}
	a.Subtasks = []*Node{b}
	b.Subtasks = []*Node{a}
	if !AllDescendantsCompleted(a) {
		t.Fatal("expected completion check to terminate and report true")
	}
}

// memoryStore is an in-memory CompletionStore.
type memoryStore struct {
	tasks  map[int64]*domain.Task
	writes []int64
}

func newMemoryStore(rows ...domain.Task) *memoryStore {
	s := &memoryStore{tasks: make(map[int64]*domain.Task)}
	for i := range rows {
		row := rows[i]
		s.tasks[row.ID] = &row
	}
	return s
}

func (s *memoryStore) ListSubtree(_ context.Context, rootID int64) ([]domain.Task, error) {
	if _, ok := s.tasks[rootID]; !ok {
		return nil, nil
	}
	out := []domain.Task{}
	queue := []int64{rootID}
	seen := map[int64]bool{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, *s.tasks[id])
		for _, t := range s.tasks {
			if t.ParentTaskID != nil && *t.ParentTaskID == id {
				queue = append(queue, t.ID)
			}
		}
	}
	return out, nil
}

func (s *memoryStore) MarkCompleted(_ context.Context, id int64, at time.Time) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.Status == domain.TaskStatusCompleted {
		return false, nil
	}
	t.Status = domain.TaskStatusCompleted
	t.CompletedAt = &at
	s.writes = append(s.writes, id)
	return true, nil
}

func (s *memoryStore) complete(id int64) *domain.Task {
	t := s.tasks[id]
	t.Status = domain.TaskStatusCompleted
	return t
}

func TestPropagateCompletionLeafFirst(t *testing.T) {
	// 1 -> 2 -> {3, 4}; 1 -> 5
	store := newMemoryStore(
		task(1, nil, domain.TaskStatusInProgress),
		task(2, ptr(1), domain.TaskStatusInProgress),
		task(3, ptr(2), domain.TaskStatusNotStarted),
		task(4, ptr(2), domain.TaskStatusNotStarted),
		task(5, ptr(1), domain.TaskStatusCompleted),
	)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	changed, err := PropagateCompletion(ctx, store, store.complete(3), now)
	if err != nil {
		t.Fatalf("PropagateCompletion: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("sibling 4 still open, changed = %v", changed)
	}

	changed, err = PropagateCompletion(ctx, store, store.complete(4), now)
	if err != nil {
		t.Fatalf("PropagateCompletion: %v", err)
	}
	if !equalIDs(changed, []int64{2, 1}) {
		t.Fatalf("changed = %v, want [2 1]", changed)
	}
	for _, id := range []int64{1, 2} {
		got := store.tasks[id]
		if got.Status != domain.TaskStatusCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
			t.Fatalf("task %d = %+v, want completed at %v", id, got, now)
		}
	}
}

func TestPropagateCompletionStopsAtIncompleteAncestor(t *testing.T) {
	// 1 -> {2 -> 3, 4(open)}
	store := newMemoryStore(
		task(1, nil, domain.TaskStatusInProgress),
		task(2, ptr(1), domain.TaskStatusInProgress),
		task(3, ptr(2), domain.TaskStatusNotStarted),
		task(4, ptr(1), domain.TaskStatusInProgress),
	)
	changed, err := PropagateCompletion(context.Background(), store, store.complete(3), time.Now())
	if err != nil {
		t.Fatalf("PropagateCompletion: %v", err)
	}
	if !equalIDs(changed, []int64{2}) {
		t.Fatalf("changed = %v, want [2]", changed)
	}
	if store.tasks[1].Status == domain.TaskStatusCompleted {
		t.Fatal("root must stay open while task 4 is open")
	}
}

func TestPropagateCompletionSkipsAlreadyCompletedButKeepsWalking(t *testing.T) {
	store := newMemoryStore(
		task(1, nil, domain.TaskStatusInProgress),
		task(2, ptr(1), domain.TaskStatusCompleted),
		task(3, ptr(2), domain.TaskStatusNotStarted),
	)
	changed, err := PropagateCompletion(context.Background(), store, store.complete(3), time.Now())
	if err != nil {
		t.Fatalf("PropagateCompletion: %v", err)
	}
	if !equalIDs(changed, []int64{1}) {
		t.Fatalf("changed = %v, want [1]", changed)
	}
	if !equalIDs(store.writes, []int64{1}) {
		t.Fatalf("writes = %v, want only the root", store.writes)
	}
}

func TestPropagateCompletionRootTaskIsNoop(t *testing.T) {
	store := newMemoryStore(task(1, nil, domain.TaskStatusNotStarted))
	changed, err := PropagateCompletion(context.Background(), store, store.complete(1), time.Now())
	if err != nil || len(changed) != 0 {
		t.Fatalf("changed = %v, err = %v; want nothing", changed, err)
	}
}

func TestPropagateCompletionTerminatesOnCycle(t *testing.T) {
	store := newMemoryStore(
		task(1, ptr(2), domain.TaskStatusInProgress),
		task(2, ptr(1), domain.TaskStatusInProgress),
		task(3, ptr(1), domain.TaskStatusNotStarted),
	)
	if _, err := PropagateCompletion(context.Background(), store, store.complete(3), time.Now()); err != nil {
		t.Fatalf("PropagateCompletion: %v", err)
	}
}
