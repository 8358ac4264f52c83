package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nxsys/task-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskCreated       EventType = "task_created"
	EventTaskUpdated       EventType = "task_updated"
	EventTaskStatusChanged EventType = "task_status_changed"
	EventTaskAutoCompleted EventType = "task_auto_completed"
	EventTaskDeleted       EventType = "task_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    int64       `json:"task_id"`
	ActorID   int64       `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, taskID, actorID int64, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TaskID:    taskID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	Title        string              `json:"title"`
	AssignedTo   int64               `json:"assigned_to"`
	ParentTaskID *int64              `json:"parent_task_id,omitempty"`
	Category     *domain.Category    `json:"category,omitempty"`
	Priority     domain.TaskPriority `json:"priority"`
}

// TaskUpdatedPayload payload.
type TaskUpdatedPayload struct {
	OldAssignee int64 `json:"old_assignee"`
	NewAssignee int64 `json:"new_assignee"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}

// TaskAutoCompletedPayload payload.
type TaskAutoCompletedPayload struct {
	TriggeredBy int64 `json:"triggered_by"`
}

// TaskDeletedPayload payload.
type TaskDeletedPayload struct {
	Title string `json:"title"`
}
