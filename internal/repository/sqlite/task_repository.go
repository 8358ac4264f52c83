package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed implementation.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskSelect = `
        SELECT t.id, t.title, t.description, t.start_date, t.due_date, t.priority, t.status,
               t.category, t.created_by, t.assigned_to, t.parent_task_id, t.created_at, t.completed_at,
               c.name, c.seniority_level, a.name, a.seniority_level
        FROM tasks t
        JOIN users c ON c.id = t.created_by
        JOIN users a ON a.id = t.assigned_to`

const assigneeOrder = `
        ORDER BY t.due_date IS NULL, t.due_date ASC,
                 CASE t.priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
                 t.id ASC`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO tasks (title, description, start_date, due_date, priority, status, category,
                           created_by, assigned_to, parent_task_id, created_at, completed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title,
		nullString(task.Description),
		nullDate(task.StartDate),
		nullDate(task.DueDate),
		string(task.Priority),
		string(task.Status),
		nullCategory(task.Category),
		task.CreatedBy,
		task.AssignedTo,
		nullInt64(task.ParentTaskID),
		formatTimestamp(now),
		nullTimestamp(task.CompletedAt),
	)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	task.CreatedAt = now
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	clauses := []string{}
	args := []any{}

	if len(filter.Categories) == 0 {
		clauses = append(clauses, "t.parent_task_id IS NOT NULL")
	} else {
		placeholders := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		clauses = append(clauses, "((t.parent_task_id IS NULL AND t.category IN ("+
			strings.Join(placeholders, ",")+")) OR t.parent_task_id IS NOT NULL)")
	}
	if filter.Status != nil {
		clauses = append(clauses, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		clauses = append(clauses, "t.priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.AssigneeID != nil {
		clauses = append(clauses, "t.assigned_to = ?")
		args = append(args, *filter.AssigneeID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		clauses = append(clauses, "(LOWER(t.title) LIKE ? OR LOWER(COALESCE(t.description, '')) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	query := taskSelect + ` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY t.created_at DESC, t.id DESC`
	return r.query(ctx, query, args...)
}

func (r *taskRepository) ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE t.assigned_to = ?`+assigneeOrder, assigneeID)
}

func (r *taskRepository) ListByAssigneeRankAbove(ctx context.Context, level int) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE a.seniority_level > ?`+assigneeOrder, level)
}

func (r *taskRepository) ListChildren(ctx context.Context, parentID int64) ([]domain.Task, error) {
	return r.query(ctx, taskSelect+` WHERE t.parent_task_id = ? ORDER BY t.created_at ASC, t.id ASC`, parentID)
}

func (r *taskRepository) CountChildren(ctx context.Context, parentID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE parent_task_id = ?`, parentID).Scan(&count)
	return count, err
}

func (r *taskRepository) ListSubtree(ctx context.Context, rootID int64) ([]domain.Task, error) {
	query := `
        WITH RECURSIVE subtree(id) AS (
            SELECT id FROM tasks WHERE id = ?
            UNION
            SELECT child.id FROM tasks child JOIN subtree s ON child.parent_task_id = s.id
        )` + taskSelect + ` WHERE t.id IN (SELECT id FROM subtree)`
	return r.query(ctx, query, rootID)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE tasks SET title = ?, description = ?, start_date = ?, due_date = ?, priority = ?,
            category = ?, assigned_to = ?
        WHERE id = ?`,
		task.Title,
		nullString(task.Description),
		nullDate(task.StartDate),
		nullDate(task.DueDate),
		string(task.Priority),
		nullCategory(task.Category),
		task.AssignedTo,
		task.ID,
	)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (r *taskRepository) SetStatus(ctx context.Context, id int64, status domain.TaskStatus, completedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`,
		string(status), nullTimestamp(completedAt), id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (r *taskRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	completed := string(domain.TaskStatusCompleted)
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ? AND status <> ?`,
		completed, formatTimestamp(at), id, completed)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affectedOrNotFound(res)
}

func (r *taskRepository) query(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		startDate   sql.NullString
		dueDate     sql.NullString
		priority    string
		status      string
		category    sql.NullString
		parentID    sql.NullInt64
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&startDate,
		&dueDate,
		&priority,
		&status,
		&category,
		&task.CreatedBy,
		&task.AssignedTo,
		&parentID,
		&createdAt,
		&completedAt,
		&task.CreatorName,
		&task.CreatorSeniority,
		&task.AssigneeName,
		&task.AssigneeSeniority,
	); err != nil {
		return nil, err
	}

	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	if description.Valid {
		task.Description = &description.String
	}
	if category.Valid {
		c := domain.Category(category.String)
		task.Category = &c
	}
	if parentID.Valid {
		task.ParentTaskID = &parentID.Int64
	}

	var err error
	if task.StartDate, err = parseNullDate(startDate); err != nil {
		return nil, err
	}
	if task.DueDate, err = parseNullDate(dueDate); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		ts, err := parseTimestamp(completedAt.String)
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &ts
	}
	return &task, nil
}

func parseNullDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
