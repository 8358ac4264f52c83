package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/persistence"
)

func newTestEnv(t *testing.T) *cmdEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := config.Default()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "xtask.db")
	cfg.Auth.BcryptCost = 4

	store, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &cmdEnv{cfg: &cfg, logger: logger, store: store}
}

func TestNewAppServesHealthAndRoutes(t *testing.T) {
	app := newApp(newTestEnv(t), nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"live", http.MethodGet, "/health/live", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", http.StatusOK},
		{"tasks require a token", http.MethodGet, "/tasks", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != "task-tracker" || body["status"] != "alive" {
		t.Fatalf("live body = %v", body)
	}
}

func TestSeedCommandAgainstConfigFile(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "DB_DRIVER", "SQLITE_PATH", "AUTH_BCRYPT_COST", "LOG_FILE", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "xtask.toml")
	content := "[database]\ndriver = \"sqlite\"\nsqlite_path = \"" + filepath.ToSlash(filepath.Join(dir, "seed.db")) + "\"\n\n[auth]\nbcrypt_cost = 4\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		t.Cleanup(func() {
			rootCmd.SetOut(nil)
			rootCmd.SetErr(nil)
			rootCmd.SetArgs(nil)
		})
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("xtask %v: %v\n%s", args, err, out.String())
		}
		return out.String()
	}

	if out := run("seed"); !strings.Contains(out, "created 5 users and 14 tasks") {
		t.Fatalf("first seed output = %q", out)
	}
	if out := run("seed"); !strings.Contains(out, "already present") {
		t.Fatalf("second seed output = %q", out)
	}
}
