package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskSelect = `
        SELECT t.id, t.title, t.description, t.start_date, t.due_date, t.priority, t.status,
               t.category, t.created_by, t.assigned_to, t.parent_task_id, t.created_at, t.completed_at,
               c.name, c.seniority_level, a.name, a.seniority_level
        FROM tasks t
        JOIN users c ON c.id = t.created_by
        JOIN users a ON a.id = t.assigned_to`

const assigneeOrder = `
        ORDER BY t.due_date ASC NULLS LAST,
                 CASE t.priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
                 t.id ASC`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (title, description, start_date, due_date, priority, status, category,
                           created_by, assigned_to, parent_task_id, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.StartDate,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		categoryArg(task.Category),
		task.CreatedBy,
		task.AssignedTo,
		task.ParentTaskID,
		task.CompletedAt,
	).Scan(&task.ID, &task.CreatedAt)
	return translate(err)
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, taskSelect+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	clauses := []string{}
	args := []any{}

	cats := make([]string, len(filter.Categories))
	for i, c := range filter.Categories {
		cats[i] = string(c)
	}
	args = append(args, cats)
	clauses = append(clauses, fmt.Sprintf("((t.parent_task_id IS NULL AND t.category = ANY($%d)) OR t.parent_task_id IS NOT NULL)", len(args)))

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		clauses = append(clauses, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args)))
	}

	query := taskSelect + ` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY t.created_at DESC, t.id DESC`
	return r.query(ctx, query, args...)
}

func (r *taskRepository) ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE t.assigned_to=$1`+assigneeOrder, assigneeID)
}

func (r *taskRepository) ListByAssigneeRankAbove(ctx context.Context, level int) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE a.seniority_level > $1`+assigneeOrder, level)
}

func (r *taskRepository) ListChildren(ctx context.Context, parentID int64) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE t.parent_task_id=$1 ORDER BY t.created_at ASC, t.id ASC`, parentID)
}

func (r *taskRepository) CountChildren(ctx context.Context, parentID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE parent_task_id=$1`, parentID).Scan(&count)
	return count, err
}

func (r *taskRepository) ListSubtree(ctx context.Context, rootID int64) ([]domain.Task, error) {
	query := `
        WITH RECURSIVE subtree(id) AS (
            SELECT id FROM tasks WHERE id = $1
            UNION
            SELECT child.id FROM tasks child JOIN subtree s ON child.parent_task_id = s.id
        )` + taskSelect + ` WHERE t.id IN (SELECT id FROM subtree)`
	return r.query(ctx, query, rootID)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, start_date=$3, due_date=$4, priority=$5,
            category=$6, assigned_to=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		task.Title,
		task.Description,
		task.StartDate,
		task.DueDate,
		string(task.Priority),
		categoryArg(task.Category),
		task.AssignedTo,
		task.ID,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetStatus(ctx context.Context, id int64, status domain.TaskStatus, completedAt *time.Time) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status=$1, completed_at=$2 WHERE id=$3`, string(status), completedAt, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status=$1, completed_at=$2 WHERE id=$3 AND status<>$1`,
		string(domain.TaskStatusCompleted), at, id)
	if err != nil {
		return false, translate(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) query(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task     domain.Task
		priority string
		status   string
		category *string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.StartDate,
		&task.DueDate,
		&priority,
		&status,
		&category,
		&task.CreatedBy,
		&task.AssignedTo,
		&task.ParentTaskID,
		&task.CreatedAt,
		&task.CompletedAt,
		&task.CreatorName,
		&task.CreatorSeniority,
		&task.AssigneeName,
		&task.AssigneeSeniority,
	); err != nil {
		return nil, err
	}
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	if category != nil {
		c := domain.Category(*category)
		task.Category = &c
	}
	return &task, nil
}

func categoryArg(c *domain.Category) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}
