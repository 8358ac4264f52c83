package tasktree

import (
	"context"
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
)

// AllDescendantsCompleted reports whether every task below node is completed. The node's own
// status is not considered, and a node without subtasks is vacuously complete. The search is
// depth-first and stops at the first incomplete descendant.
func AllDescendantsCompleted(node *Node) bool {
	if node == nil {
		return true
	}
	visited := map[*Node]bool{node: true}
	stack := append([]*Node(nil), node.Subtasks...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || visited[n] {
			continue
		}
		visited[n] = true
		if !n.Task.IsCompleted() {
			return false
		}
		stack = append(stack, n.Subtasks...)
	}
	return true
}

// CompletionStore is the storage the ancestor walk needs.
type CompletionStore interface {
	// ListSubtree returns the task with the given id and all of its descendants.
	ListSubtree(ctx context.Context, rootID int64) ([]domain.Task, error)
	// MarkCompleted completes the task unless it already is, reporting whether it wrote.
	MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error)
}

// PropagateCompletion walks up from a freshly completed task. Each ancestor whose whole
// subtree is completed is marked completed and the walk continues with its parent; the walk
// ends at the first ancestor with an incomplete descendant, at the root, or after MaxDepth
// levels. Each level is an independent read followed by a conditional write. It returns the
// ids of the ancestors it changed, nearest first.
func PropagateCompletion(ctx context.Context, store CompletionStore, task *domain.Task, now time.Time) ([]int64, error) {
	changed := make([]int64, 0)
	if task == nil {
		return changed, nil
	}

	visited := map[int64]bool{task.ID: true}
	parentID := task.ParentTaskID
	for depth := 0; parentID != nil && depth < MaxDepth; depth++ {
		id := *parentID
		if visited[id] {
			break
		}
		visited[id] = true

		rows, err := store.ListSubtree(ctx, id)
		if err != nil {
			return changed, err
		}
		parent := Find(BuildForest(rows), id)
		if parent == nil || !AllDescendantsCompleted(parent) {
			break
		}

		wrote, err := store.MarkCompleted(ctx, id, now)
		if err != nil {
			return changed, err
		}
		if wrote {
			changed = append(changed, id)
		}
		parentID = parent.Task.ParentTaskID
	}
	return changed, nil
}
