package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDLocal is the fiber locals key holding the request id.
const RequestIDLocal = "request_id"

// UnmatchedRoute is the metrics key for requests no registered route handled.
const UnmatchedRoute = "<unmatched>"

// RouteKey returns the route pattern that handled the request, never the raw path.
func RouteKey(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return UnmatchedRoute
}

// RequestLogger logs one line per request and records it in metrics. It must run outside the
// error handler so the final status is visible.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		metrics.RecordRequest(RouteKey(c), c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals(RequestIDLocal).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}

		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return err
	}
}
