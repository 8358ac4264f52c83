package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/events"
	"github.com/nxsys/task-tracker/internal/policy"
	"github.com/nxsys/task-tracker/internal/repository"
	"github.com/nxsys/task-tracker/internal/tasktree"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// CategorySource resolves the category set of a user.
type CategorySource interface {
	Categories(ctx context.Context, userID int64) ([]domain.Category, error)
}

// TaskService coordinates task workflows.
type TaskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	categories CategorySource
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	UserRepo   repository.UserRepository
	Categories CategorySource
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TaskListFilter holds the optional List filters. Empty strings mean unset.
type TaskListFilter struct {
	Status     string
	Priority   string
	AssigneeID *int64
	Search     string
}

// TaskCreateInput describes task creation payload.
type TaskCreateInput struct {
	Title        string
	Description  *string
	StartDate    *time.Time
	DueDate      *time.Time
	Priority     string
	Category     *string
	AssignedTo   int64
	ParentTaskID *int64
}

// TaskUpdateInput describes a partial update. Unset Optional fields and nil pointers keep the
// stored value; an empty Title keeps the stored title.
type TaskUpdateInput struct {
	Title       string
	Description domain.Optional[string]
	StartDate   domain.Optional[time.Time]
	DueDate     domain.Optional[time.Time]
	Priority    string
	Category    domain.Optional[string]
	AssignedTo  *int64
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	categories := deps.Categories
	if categories == nil {
		categories = deps.UserRepo
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		users:      deps.UserRepo,
		categories: categories,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// List returns the forest of tasks visible to the actor through their categories.
func (s *TaskService) List(ctx context.Context, actor *domain.User, filter TaskListFilter) ([]*tasktree.Node, error) {
	categories, err := s.categories.Categories(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if len(categories) == 0 {
		return []*tasktree.Node{}, nil
	}

	repoFilter := repository.TaskFilter{
		Categories: categories,
		AssigneeID: filter.AssigneeID,
		Search:     strings.TrimSpace(filter.Search),
	}
	if filter.Status != "" {
		status := domain.TaskStatus(filter.Status)
		if !status.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid status %q", filter.Status))
		}
		repoFilter.Status = &status
	}
	if filter.Priority != "" {
		priority := domain.TaskPriority(filter.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid priority %q", filter.Priority))
		}
		repoFilter.Priority = &priority
	}

	rows, err := s.tasks.List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err, "task")
	}

	// Subtasks whose parent was filtered out surface as roots without a category and are dropped.
	forest := tasktree.FilterRoots(tasktree.BuildForest(rows), func(n *tasktree.Node) bool {
		return n.Task.Category != nil && domain.ContainsCategory(categories, *n.Task.Category)
	})
	return forest, nil
}

// ListMine returns the forest of tasks assigned to the actor.
func (s *TaskService) ListMine(ctx context.Context, actor *domain.User) ([]*tasktree.Node, error) {
	rows, err := s.tasks.ListByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "task")
	}
	return tasktree.BuildForest(rows), nil
}

// ListTeam returns the forest of tasks assigned to users more junior than the actor.
func (s *TaskService) ListTeam(ctx context.Context, actor *domain.User) ([]*tasktree.Node, error) {
	rows, err := s.tasks.ListByAssigneeRankAbove(ctx, actor.SeniorityLevel)
	if err != nil {
		return nil, storeError(err, "task")
	}
	return tasktree.BuildForest(rows), nil
}

// GetDetail returns a task with its breadcrumb and direct children.
func (s *TaskService) GetDetail(ctx context.Context, actor *domain.User, id int64) (*domain.TaskDetail, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	crumbs, err := tasktree.Breadcrumb(ctx, task, s.lookup)
	if err != nil {
		return nil, storeError(err, "task")
	}
	children, err := s.tasks.ListChildren(ctx, id)
	if err != nil {
		return nil, storeError(err, "task")
	}
	return &domain.TaskDetail{Task: task, Breadcrumb: crumbs, Subtasks: children}, nil
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, input TaskCreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.AssignedTo == 0 {
		return nil, apperrors.NewBadRequest("title and assigned_to are required")
	}
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	priority := domain.TaskPriorityMedium
	if input.Priority != "" {
		priority = domain.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid priority %q", input.Priority))
		}
	}

	who := policy.ActorFromUser(actor)
	if input.ParentTaskID == nil {
		if err := authorize(policy.OpCreateRootTask, who, policy.Resource{}); err != nil {
			return nil, err
		}
	} else {
		parent, err := s.tasks.GetByID(ctx, *input.ParentTaskID)
		if err != nil {
			return nil, storeError(err, "parent task")
		}
		if err := authorize(policy.OpCreateSubtask, who, policy.Resource{ParentAssigneeID: parent.AssignedTo}); err != nil {
			return nil, err
		}
		if err := checkStartAfterParent(input.StartDate, parent); err != nil {
			return nil, err
		}
		category = nil
	}

	if err := s.checkAssignee(ctx, who, input.AssignedTo); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:        title,
		Description:  input.Description,
		StartDate:    dateOnly(input.StartDate),
		DueDate:      dateOnly(input.DueDate),
		Priority:     priority,
		Status:       domain.TaskStatusNotStarted,
		Category:     category,
		CreatedBy:    actor.ID,
		AssignedTo:   input.AssignedTo,
		ParentTaskID: input.ParentTaskID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError(err, "task")
	}

	s.publish(ctx, events.EventTaskCreated, task.ID, actor.ID, events.TaskCreatedPayload{
		Title:        task.Title,
		AssignedTo:   task.AssignedTo,
		ParentTaskID: task.ParentTaskID,
		Category:     task.Category,
		Priority:     task.Priority,
	})
	return s.getTask(ctx, task.ID)
}

// Update applies a partial update on behalf of the task's creator.
func (s *TaskService) Update(ctx context.Context, actor *domain.User, id int64, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	who := policy.ActorFromUser(actor)
	if err := authorize(policy.OpEditTask, who, policy.Resource{CreatorID: task.CreatedBy}); err != nil {
		return nil, err
	}

	var category *domain.Category
	if input.Category.Set {
		if category, err = parseCategory(input.Category.Value); err != nil {
			return nil, err
		}
	}
	if input.Priority != "" {
		priority := domain.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid priority %q", input.Priority))
		}
		task.Priority = priority
	}

	if input.StartDate.Set && input.StartDate.Value != nil && task.ParentTaskID != nil {
		parent, err := s.tasks.GetByID(ctx, *task.ParentTaskID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err, "parent task")
		}
		if parent != nil {
			if err := checkStartAfterParent(input.StartDate.Value, parent); err != nil {
				return nil, err
			}
		}
	}

	oldAssignee := task.AssignedTo
	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		if err := s.checkAssignee(ctx, who, *input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = *input.AssignedTo
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		task.Title = title
	}
	task.Description = input.Description.Or(task.Description)
	task.StartDate = dateOnly(input.StartDate.Or(task.StartDate))
	task.DueDate = dateOnly(input.DueDate.Or(task.DueDate))
	if input.Category.Set {
		task.Category = category
	}
	if task.ParentTaskID != nil {
		task.Category = nil
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, storeError(err, "task")
	}

	s.publish(ctx, events.EventTaskUpdated, task.ID, actor.ID, events.TaskUpdatedPayload{
		OldAssignee: oldAssignee,
		NewAssignee: task.AssignedTo,
	})
	return s.getTask(ctx, id)
}

// SetStatus changes a task's status on behalf of its assignee. Completing a task walks up the
// hierarchy completing every ancestor whose subtree is now fully completed.
func (s *TaskService) SetStatus(ctx context.Context, actor *domain.User, id int64, status string) (*domain.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(policy.OpChangeStatus, policy.ActorFromUser(actor), policy.Resource{AssigneeID: task.AssignedTo}); err != nil {
		return nil, err
	}
	next := domain.TaskStatus(status)
	if !next.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid status %q", status))
	}

	var completedAt *time.Time
	now := s.now().UTC()
	if next == domain.TaskStatusCompleted {
		completedAt = &now
	}
	if err := s.tasks.SetStatus(ctx, id, next, completedAt); err != nil {
		return nil, storeError(err, "task")
	}

	s.publish(ctx, events.EventTaskStatusChanged, id, actor.ID, events.TaskStatusChangedPayload{
		OldStatus: task.Status,
		NewStatus: next,
	})

	if next == domain.TaskStatusCompleted {
		completed, err := tasktree.PropagateCompletion(ctx, s.tasks, task, now)
		for _, ancestorID := range completed {
			s.publish(ctx, events.EventTaskAutoCompleted, ancestorID, actor.ID, events.TaskAutoCompletedPayload{TriggeredBy: id})
		}
		if err != nil {
			return nil, storeError(err, "task")
		}
		if len(completed) > 0 {
			s.logger.Info("ancestors auto-completed", zap.Int64("task_id", id), zap.Int64s("ancestor_ids", completed))
		}
	}
	return s.getTask(ctx, id)
}

// Delete removes a childless task on behalf of its creator.
func (s *TaskService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(policy.OpDeleteTask, policy.ActorFromUser(actor), policy.Resource{CreatorID: task.CreatedBy}); err != nil {
		return err
	}
	children, err := s.tasks.CountChildren(ctx, id)
	if err != nil {
		return storeError(err, "task")
	}
	if children > 0 {
		return apperrors.NewDomainError("BAD_REQUEST", "Cannot delete task with subtasks. Delete subtasks first.",
			http.StatusBadRequest, map[string]any{"subtask_count": children})
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return storeError(err, "task")
	}
	s.publish(ctx, events.EventTaskDeleted, id, actor.ID, events.TaskDeletedPayload{Title: task.Title})
	return nil
}

func (s *TaskService) getTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "task")
	}
	return task, nil
}

func (s *TaskService) lookup(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return task, err
}

func (s *TaskService) checkAssignee(ctx context.Context, who policy.Actor, assigneeID int64) error {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return storeError(err, "assignee")
	}
	return authorize(policy.OpAssignTask, who, policy.Resource{
		AssigneeID:        assignee.ID,
		AssigneeSeniority: assignee.SeniorityLevel,
	})
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, taskID, actorID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, taskID, actorID, s.now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func parseCategory(value *string) (*domain.Category, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	c := domain.Category(strings.TrimSpace(*value))
	if !c.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid category %q", *value))
	}
	return &c, nil
}

func checkStartAfterParent(start *time.Time, parent *domain.Task) error {
	if start == nil || parent.StartDate == nil {
		return nil
	}
	if domain.DateOnly(*start).Before(domain.DateOnly(*parent.StartDate)) {
		return apperrors.NewBadRequest(fmt.Sprintf("Start date cannot be before parent task's start date (%s)",
			parent.StartDate.Format(domain.DateLayout)))
	}
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOnly(*t)
	return &d
}
