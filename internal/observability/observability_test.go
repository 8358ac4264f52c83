package observability

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tasks", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tasks", "GET", 200, 30*time.Millisecond)
	m.RecordError("/tasks/:id", "DELETE", "FORBIDDEN")

	snap := m.Snapshot()
	if snap.TotalRequests != 2 || snap.TotalErrors != 1 {
		t.Fatalf("totals = %d/%d", snap.TotalRequests, snap.TotalErrors)
	}
	if got := snap.AvgLatencyMs["/tasks|GET|200"]; got != 20 {
		t.Fatalf("avg latency = %d, want 20", got)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	if s := nilMetrics.Snapshot(); s.TotalRequests != 0 {
		t.Fatal("nil metrics should be inert")
	}
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/tasks/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}

	if got := m.Snapshot().Requests["/tasks/:id|GET|204"]; got != 2 {
		t.Fatalf("route counter = %d, want 2", got)
	}
}

func TestRequestLoggerBucketsUnmatchedPaths(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/tasks/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for i := 0; i < 20; i++ {
		n := strconv.Itoa(i)
		for _, path := range []string{"/tasks/" + n, "/nope/" + n} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			if err != nil {
				t.Fatalf("app.Test %s: %v", path, err)
			}
			resp.Body.Close()
		}
	}

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("request keys = %v, want 2", snap.Requests)
	}
	if got := snap.Requests[UnmatchedRoute+"|GET|404"]; got != 20 {
		t.Fatalf("unmatched counter = %d, want 20", got)
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{
		Level:     "debug",
		File:      filepath.Join(t.TempDir(), "logs", "app.log"),
		MaxSizeMB: 1,
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()
}
