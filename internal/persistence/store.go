// Package persistence opens the configured database backend, applies its migrations and hands out
// the matching repository implementations.
package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/repository"
	pgrepo "github.com/nxsys/task-tracker/internal/repository/postgres"
	sqliterepo "github.com/nxsys/task-tracker/internal/repository/sqlite"
)

// Store is an open database together with its repositories.
type Store struct {
	Driver string
	Users  repository.UserRepository
	Tasks  repository.TaskRepository

	postgres *Postgres
	sqlite   *SQLite
	logger   *zap.Logger
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	store := &Store{Driver: cfg.Driver, logger: logger}

	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store.postgres = pg
		store.Users = pgrepo.NewUserRepository(pg.Pool)
		store.Tasks = pgrepo.NewTaskRepository(pg.Pool)
	case config.DriverSQLite:
		lite, err := NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		store.sqlite = lite
		store.Users = sqliterepo.NewUserRepository(lite.DB)
		store.Tasks = sqliterepo.NewTaskRepository(lite.DB)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	return store, nil
}

// Migrate applies all pending embedded migrations for the active backend.
func (s *Store) Migrate(ctx context.Context) error {
	switch {
	case s.sqlite != nil:
		m, err := newSQLiteMigrator(s.sqlite.DB)
		if err != nil {
			return err
		}
		return applyMigrations(m, s.logger)
	case s.postgres != nil:
		db := stdlib.OpenDBFromPool(s.postgres.Pool)
		defer db.Close()
		m, err := newPostgresMigrator(db)
		if err != nil {
			return err
		}
		return applyMigrations(m, s.logger)
	}
	return fmt.Errorf("store not open")
}

// MigrationStatus reports the applied and latest migration versions.
func (s *Store) MigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	switch {
	case s.sqlite != nil:
		m, err := newSQLiteMigrator(s.sqlite.DB)
		if err != nil {
			return nil, err
		}
		return migrationStatus(m, "sqlite")
	case s.postgres != nil:
		db := stdlib.OpenDBFromPool(s.postgres.Pool)
		defer db.Close()
		m, err := newPostgresMigrator(db)
		if err != nil {
			return nil, err
		}
		return migrationStatus(m, "postgres")
	}
	return nil, fmt.Errorf("store not open")
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.sqlite != nil:
		return s.sqlite.Ping(ctx)
	case s.postgres != nil:
		return s.postgres.Ping(ctx)
	}
	return fmt.Errorf("store not open")
}

// Close releases the backend.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.postgres.Close()
	s.sqlite.Close()
}
