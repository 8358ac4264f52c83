package persistence

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrationStatus holds information about database migration state.
type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

func migrationsDir(driver string) string {
	return "migrations/" + driver
}

func newSQLiteMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(migrationsFS, migrationsDir("sqlite"))
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

func newPostgresMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(migrationsFS, migrationsDir("postgres"))
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "pgx5", driver)
}

// applyMigrations runs every pending migration.
func applyMigrations(m *migrate.Migrate, logger *zap.Logger) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// migrationStatus compares the applied version with the newest embedded migration.
func migrationStatus(m *migrate.Migrate, driver string) (*MigrationStatus, error) {
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, migrationsDir(driver))
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var latest uint
	if first, err := source.First(); err == nil {
		latest = first
		for {
			next, err := source.Next(latest)
			if err != nil {
				break
			}
			latest = next
		}
	}

	return &MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latest,
		Dirty:          dirty,
		Pending:        version < latest,
	}, nil
}
