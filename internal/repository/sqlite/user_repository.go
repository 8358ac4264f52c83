package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository returns a SQLite-backed implementation.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, seniority_level, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user      domain.User
		createdAt string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.SeniorityLevel,
		&createdAt,
	); err != nil {
		return nil, err
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = ts
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, seniority_level, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Email, user.Name, user.PasswordHash, user.SeniorityLevel, formatTimestamp(now),
	)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.MinRank > 0 {
		clauses = append(clauses, "seniority_level >= ?")
		args = append(args, filter.MinRank)
	}
	if filter.RankAbove > 0 {
		clauses = append(clauses, "seniority_level > ?")
		args = append(args, filter.RankAbove)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY seniority_level ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateSeniority(ctx context.Context, id int64, level int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET seniority_level = ? WHERE id = ?`, level, id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (r *userRepository) CountAtRank(ctx context.Context, level int, excludeID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE seniority_level = ? AND id <> ?`, level, excludeID,
	).Scan(&count)
	return count, err
}

func (r *userRepository) Categories(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category FROM user_categories WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, domain.Category(c))
	}
	return categories, rows.Err()
}

func (r *userRepository) ReplaceCategories(ctx context.Context, userID int64, categories []domain.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_categories WHERE user_id = ?`, userID); err != nil {
		return translate(err)
	}
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_categories (user_id, category) VALUES (?, ?)`, userID, string(c),
		); err != nil {
			return translate(err)
		}
	}
	return tx.Commit()
}

func (r *userRepository) CountTaskReferences(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE created_by = ? OR assigned_to = ?`, userID, userID,
	).Scan(&count)
	return count, err
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}
