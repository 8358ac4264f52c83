package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, seniority_level, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, name, password_hash, seniority_level)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.SeniorityLevel,
	).Scan(&user.ID, &user.CreatedAt)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.SeniorityLevel,
		&user.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.MinRank > 0 {
		args = append(args, filter.MinRank)
		clauses = append(clauses, fmt.Sprintf("seniority_level >= $%d", len(args)))
	}
	if filter.RankAbove > 0 {
		args = append(args, filter.RankAbove)
		clauses = append(clauses, fmt.Sprintf("seniority_level > $%d", len(args)))
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY seniority_level ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.PasswordHash,
			&user.SeniorityLevel,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateSeniority(ctx context.Context, id int64, level int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET seniority_level=$1 WHERE id=$2`, level, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) CountAtRank(ctx context.Context, level int, excludeID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE seniority_level=$1 AND id<>$2`, level, excludeID,
	).Scan(&count)
	return count, err
}

func (r *userRepository) Categories(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category FROM user_categories WHERE user_id=$1 ORDER BY category`, userID)
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
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_categories WHERE user_id=$1`, userID); err != nil {
		return translate(err)
	}
	for _, c := range categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_categories (user_id, category) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, string(c),
		); err != nil {
			return translate(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) CountTaskReferences(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE created_by=$1 OR assigned_to=$1`, userID,
	).Scan(&count)
	return count, err
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
