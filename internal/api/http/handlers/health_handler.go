package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/observability"
	"github.com/nxsys/task-tracker/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       *persistence.Store
	redis       *persistence.Redis
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. A nil redis means caching is disabled and is
// not probed.
func NewHealthHandler(serviceName, version string, store *persistence.Store, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: store, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		depStatus[h.store.Driver] = err.Error()
		ready = false
	} else {
		depStatus[h.store.Driver] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics reports the in-memory request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
