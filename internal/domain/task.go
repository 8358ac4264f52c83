package domain

import "time"

// TaskStatus enumerates lifecycle states for tasks.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not started"
	TaskStatusInProgress TaskStatus = "in progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority enumerates task urgency.
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

// DateLayout is the wire and storage format for start and due dates.
const DateLayout = "2006-01-02"

// Task is a unit of work, either a root task or a subtask of another task.
type Task struct {
	ID           int64
	Title        string
	Description  *string
	StartDate    *time.Time
	DueDate      *time.Time
	Priority     TaskPriority
	Status       TaskStatus
	Category     *Category
	CreatedBy    int64
	AssignedTo   int64
	ParentTaskID *int64
	CreatedAt    time.Time
	CompletedAt  *time.Time

	// Joined from users on reads.
	CreatorName       string
	CreatorSeniority  int
	AssigneeName      string
	AssigneeSeniority int
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentTaskID == nil
}

// IsCompleted reports whether the task is in the completed state.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// BreadcrumbItem is one ancestor on the path from a root task to a task's parent.
type BreadcrumbItem struct {
	ID    int64
	Title string
}

// TaskDetail bundles a task with its ancestry and direct children.
type TaskDetail struct {
	Task       *Task
	Breadcrumb []BreadcrumbItem
	Subtasks   []Task
}

// ParseDate parses a calendar date in DateLayout as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// DateOnly truncates t to UTC midnight of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
