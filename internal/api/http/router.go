package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/api/http/handlers"
	"github.com/nxsys/task-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/register", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Auth.Register)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Get("/", cfg.Tasks.List)
	tasks.Get("/my", cfg.Tasks.ListMine)
	tasks.Get("/team", cfg.Tasks.ListTeam)
	tasks.Get("/:id", cfg.Tasks.Get)
	tasks.Post("/", cfg.Tasks.Create)
	tasks.Put("/:id", cfg.Tasks.Update)
	tasks.Patch("/:id/status", cfg.Tasks.UpdateStatus)
	tasks.Delete("/:id", cfg.Tasks.Delete)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", cfg.Users.List)
	users.Get("/juniors", cfg.Users.Juniors)
	users.Get("/assignable", cfg.Users.Assignable)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", auth.RequireAdmin(), cfg.Users.UpdateSeniority)
	users.Put("/:id/categories", auth.RequireAdmin(), cfg.Users.ReplaceCategories)
	users.Delete("/:id", auth.RequireAdmin(), cfg.Users.Delete)
}
