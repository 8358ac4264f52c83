package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/observability"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// MiddlewareConfig tunes the global middleware chain.
type MiddlewareConfig struct {
	Timeout     time.Duration
	CORSOrigins string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg MiddlewareConfig) {
	app.Use(requestIDMiddleware())
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderRequestID,
			AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			ExposeHeaders: HeaderRequestID,
		}))
	}
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Locals(observability.RequestIDLocal, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(observability.RouteKey(c), c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("path", c.Path()),
						zap.Any("request_id", c.Locals(observability.RequestIDLocal)),
						zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError extends apperrors.ToDomainError with fiber's own errors and deadline expiry.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError(statusCode(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError("TIMEOUT", "request timed out", http.StatusGatewayTimeout, nil)
	}
	return apperrors.ToDomainError(err)
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	}
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
