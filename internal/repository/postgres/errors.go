// Package postgres implements the repository contracts on PostgreSQL through pgx.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nxsys/task-tracker/internal/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translate maps driver errors onto repository sentinels, wrapping the original.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return errors.Join(repository.ErrDuplicate, err)
		case codeForeignKeyViolation:
			return errors.Join(repository.ErrForeignKey, err)
		}
	}
	return err
}
