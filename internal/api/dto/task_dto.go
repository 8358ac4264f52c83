package dto

import (
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/tasktree"
)

// CreateTaskRequest payload for POST /tasks. Dates use the YYYY-MM-DD layout.
type CreateTaskRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  *string `json:"description"`
	StartDate    *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate      *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority     string  `json:"priority"`
	Category     *string `json:"category"`
	AssignedTo   int64   `json:"assigned_to" validate:"required"`
	ParentTaskID *int64  `json:"parent_task_id"`
}

// UpdateTaskRequest payload for PUT /tasks/:id. Absent keys keep the stored value and explicit
// nulls clear nullable fields.
type UpdateTaskRequest struct {
	Title       string                  `json:"title" validate:"max=255"`
	Description domain.Optional[string] `json:"description"`
	StartDate   domain.Optional[string] `json:"start_date"`
	DueDate     domain.Optional[string] `json:"due_date"`
	Priority    string                  `json:"priority"`
	Category    domain.Optional[string] `json:"category"`
	AssignedTo  *int64                  `json:"assigned_to"`
}

// UpdateStatusRequest payload for PATCH /tasks/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TaskResponse is a task with its creator and assignee joined in.
type TaskResponse struct {
	ID                int64               `json:"id"`
	Title             string              `json:"title"`
	Description       *string             `json:"description"`
	StartDate         *string             `json:"start_date"`
	DueDate           *string             `json:"due_date"`
	Priority          domain.TaskPriority `json:"priority"`
	Status            domain.TaskStatus   `json:"status"`
	Category          *domain.Category    `json:"category"`
	CreatedBy         int64               `json:"created_by"`
	AssignedTo        int64               `json:"assigned_to"`
	ParentTaskID      *int64              `json:"parent_task_id"`
	CreatedAt         time.Time           `json:"created_at"`
	CompletedAt       *time.Time          `json:"completed_at"`
	CreatorName       string              `json:"creator_name"`
	CreatorSeniority  int                 `json:"creator_seniority"`
	AssigneeName      string              `json:"assignee_name"`
	AssigneeSeniority int                 `json:"assignee_seniority"`
}

// TaskNodeResponse is a task inside a forest.
type TaskNodeResponse struct {
	TaskResponse
	Subtasks []TaskNodeResponse `json:"subtasks"`
}

// BreadcrumbResponse is one ancestor of a task.
type BreadcrumbResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TaskDetailResponse is the payload of GET /tasks/:id.
type TaskDetailResponse struct {
	TaskResponse
	Breadcrumb []BreadcrumbResponse `json:"breadcrumb"`
	Subtasks   []TaskResponse       `json:"subtasks"`
}

// NewTaskResponse maps a domain task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		StartDate:         formatDate(t.StartDate),
		DueDate:           formatDate(t.DueDate),
		Priority:          t.Priority,
		Status:            t.Status,
		Category:          t.Category,
		CreatedBy:         t.CreatedBy,
		AssignedTo:        t.AssignedTo,
		ParentTaskID:      t.ParentTaskID,
		CreatedAt:         t.CreatedAt,
		CompletedAt:       t.CompletedAt,
		CreatorName:       t.CreatorName,
		CreatorSeniority:  t.CreatorSeniority,
		AssigneeName:      t.AssigneeName,
		AssigneeSeniority: t.AssigneeSeniority,
	}
}

// NewTaskForest maps an assembled forest. The conversion keeps an explicit stack so deep
// hierarchies do not grow the goroutine stack.
func NewTaskForest(forest []*tasktree.Node) []TaskNodeResponse {
	type frame struct {
		node *tasktree.Node
		out  *TaskNodeResponse
	}

	roots := make([]TaskNodeResponse, len(forest))
	stack := make([]frame, 0, len(forest))
	for i, n := range forest {
		stack = append(stack, frame{node: n, out: &roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.out.TaskResponse = NewTaskResponse(&f.node.Task)
		f.out.Subtasks = make([]TaskNodeResponse, len(f.node.Subtasks))
		for i, child := range f.node.Subtasks {
			stack = append(stack, frame{node: child, out: &f.out.Subtasks[i]})
		}
	}
	return roots
}

// NewTaskDetailResponse maps a task detail view.
func NewTaskDetailResponse(d *domain.TaskDetail) TaskDetailResponse {
	crumbs := make([]BreadcrumbResponse, 0, len(d.Breadcrumb))
	for _, b := range d.Breadcrumb {
		crumbs = append(crumbs, BreadcrumbResponse{ID: b.ID, Title: b.Title})
	}
	subtasks := make([]TaskResponse, 0, len(d.Subtasks))
	for i := range d.Subtasks {
		subtasks = append(subtasks, NewTaskResponse(&d.Subtasks[i]))
	}
	return TaskDetailResponse{
		TaskResponse: NewTaskResponse(d.Task),
		Breadcrumb:   crumbs,
		Subtasks:     subtasks,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
