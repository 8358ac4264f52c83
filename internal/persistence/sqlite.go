package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLite wraps a database/sql handle on a go-sqlite3 database file.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database at path with foreign keys enforced, creating its directory.
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps in-memory databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("opened sqlite database", zap.String("path", path))
	return &SQLite{DB: db}, nil
}

// Close closes the underlying handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
