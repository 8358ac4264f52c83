// Package sqlite implements the repository contracts on SQLite through database/sql and go-sqlite3.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

// timestampLayout is fixed width so that text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		// Rows written by SQLite's CURRENT_TIMESTAMP default.
		return time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	}
	return t, nil
}

func nullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t)
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(domain.DateLayout)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullCategory(c *domain.Category) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return errors.Join(repository.ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return errors.Join(repository.ErrForeignKey, err)
		}
	}
	return err
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
