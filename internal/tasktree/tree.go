// Package tasktree assembles flat task rows into forests and walks task hierarchies.
// Every traversal is iterative and bounded so a malformed parent chain cannot loop forever.
package tasktree

import (
	"context"

	"github.com/nxsys/task-tracker/internal/domain"
)

// MaxDepth caps every walk along parent links.
const MaxDepth = 256

// Node is a task together with its assembled subtasks.
type Node struct {
	Task     domain.Task
	Subtasks []*Node
}

// BuildForest links tasks to their parents in two passes over an id index. Tasks whose parent
// is not part of the collection become roots of the returned forest, even when that parent
// exists in the store. Input order is preserved among siblings and among roots.
func BuildForest(tasks []domain.Task) []*Node {
	index := make(map[int64]*Node, len(tasks))
	for i := range tasks {
		if _, dup := index[tasks[i].ID]; dup {
			continue
		}
		index[tasks[i].ID] = &Node{Task: tasks[i], Subtasks: []*Node{}}
	}

	roots := make([]*Node, 0)
	placed := make(map[int64]bool, len(tasks))
	for i := range tasks {
		id := tasks[i].ID
		if placed[id] {
			continue
		}
		placed[id] = true

		node := index[id]
		if pid := node.Task.ParentTaskID; pid != nil && *pid != id {
			if parent, ok := index[*pid]; ok {
				parent.Subtasks = append(parent.Subtasks, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Find returns the node with the given id anywhere in the forest.
func Find(forest []*Node, id int64) *Node {
	visited := make(map[*Node]bool)
	stack := append([]*Node(nil), forest...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || visited[n] {
			continue
		}
		visited[n] = true
		if n.Task.ID == id {
			return n
		}
		stack = append(stack, n.Subtasks...)
	}
	return nil
}

// FilterRoots keeps the roots for which keep returns true.
func FilterRoots(forest []*Node, keep func(*Node) bool) []*Node {
	out := make([]*Node, 0, len(forest))
	for _, n := range forest {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of nodes reachable from the forest.
func Count(forest []*Node) int {
	total := 0
	visited := make(map[*Node]bool)
	stack := append([]*Node(nil), forest...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || visited[n] {
			continue
		}
		visited[n] = true
		total++
		stack = append(stack, n.Subtasks...)
	}
	return total
}

// LookupFunc resolves a task by id. It returns (nil, nil) when the task does not exist.
type LookupFunc func(ctx context.Context, id int64) (*domain.Task, error)

// Breadcrumb returns the ancestors of task ordered from the root to the immediate parent.
// The walk stops at a missing ancestor, a repeated id, or after MaxDepth steps.
func Breadcrumb(ctx context.Context, task *domain.Task, lookup LookupFunc) ([]domain.BreadcrumbItem, error) {
	crumbs := make([]domain.BreadcrumbItem, 0)
	if task == nil {
		return crumbs, nil
	}

	visited := map[int64]bool{task.ID: true}
	parentID := task.ParentTaskID
	for depth := 0; parentID != nil && depth < MaxDepth; depth++ {
		if visited[*parentID] {
			break
		}
		visited[*parentID] = true

		parent, err := lookup(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		crumbs = append(crumbs, domain.BreadcrumbItem{ID: parent.ID, Title: parent.Title})
		parentID = parent.ParentTaskID
	}

	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs, nil
}
