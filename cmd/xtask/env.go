package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/observability"
	"github.com/nxsys/task-tracker/internal/persistence"
)

// cmdEnv is the shared state every command starts from.
type cmdEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *persistence.Store
}

// openEnv loads configuration, builds the logger and opens the configured database.
// When migrate is set, pending migrations are applied before returning.
func openEnv(ctx context.Context, migrate bool) (*cmdEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			_ = logger.Sync()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return &cmdEnv{cfg: cfg, logger: logger, store: store}, nil
}

func (r *cmdEnv) Close() {
	r.store.Close()
	_ = r.logger.Sync()
}
