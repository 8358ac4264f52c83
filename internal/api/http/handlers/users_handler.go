package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/api/dto"
	"github.com/nxsys/task-tracker/internal/service"
)

// UsersHandler manages user directory and administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Juniors GET /users/juniors.
func (h *UsersHandler) Juniors(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListJuniors(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Assignable GET /users/assignable.
func (h *UsersHandler) Assignable(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListAssignable(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Get GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateSeniority PUT /users/:id.
func (h *UsersHandler) UpdateSeniority(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSeniorityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateSeniority(c.UserContext(), actor, id, req.SeniorityLevel)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ReplaceCategories PUT /users/:id/categories.
func (h *UsersHandler) ReplaceCategories(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ReplaceCategoriesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.ReplaceCategories(c.UserContext(), actor, id, req.Categories)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}
