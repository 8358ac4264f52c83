package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/api/dto"
	"github.com/nxsys/task-tracker/internal/service"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// TasksHandler manages task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// List GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := service.TaskListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("assignee"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid assignee", map[string]any{"assignee": raw})
		}
		filter.AssigneeID = &id
	}

	forest, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskForest(forest)})
}

// ListMine GET /tasks/my.
func (h *TasksHandler) ListMine(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	forest, err := h.service.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskForest(forest)})
}

// ListTeam GET /tasks/team.
func (h *TasksHandler) ListTeam(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	forest, err := h.service.ListTeam(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskForest(forest)})
}

// Get GET /tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetDetail(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskDetailResponse(detail)})
}

// Create POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.service.Create(c.UserContext(), actor, service.TaskCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    start,
		DueDate:      due,
		Priority:     req.Priority,
		Category:     req.Category,
		AssignedTo:   req.AssignedTo,
		ParentTaskID: optionalID(req.ParentTaskID),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// Update PUT /tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.UserContext(), actor, id, service.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		DueDate:     due,
		Priority:    req.Priority,
		Category:    req.Category,
		AssignedTo:  optionalID(req.AssignedTo),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// UpdateStatus PATCH /tasks/:id/status.
func (h *TasksHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.service.SetStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// Delete DELETE /tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}
