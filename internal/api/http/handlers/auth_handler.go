package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/api/dto"
	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/service"
)

// AuthHandler exposes login, registration and the current-user endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		User:      dto.NewUserResponse(session.User),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	categories := make([]domain.Category, 0, len(req.Categories))
	for _, v := range req.Categories {
		categories = append(categories, domain.Category(v))
	}
	user, err := h.auth.Register(c.UserContext(), actor, service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		SeniorityLevel: req.SeniorityLevel,
		Categories:     categories,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
