package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"taskflow/internal/models"
)

// TaskRepository is the task store.
type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id string, to models.TaskStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

var taskColumns = []string{
	"id", "title", "description", "assigned_to", "assigned_by",
	"status", "priority", "due_date", "created_at", "updated_at",
}

func scanTask(row interface{ Scan(dest ...any) error }) (models.Task, error) {
	var (
		t        models.Task
		status   string
		priority string
		due      sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.AssignedBy,
		&status, &priority, &due, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return t, err
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query, args, err := psql.Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID, task.Title, task.Description, task.AssignedTo, task.AssignedBy,
			string(task.Status), string(task.Priority), nullableTime(task.DueDate),
			task.CreatedAt, task.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert task: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task: %w", err)
	}
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &t, nil
}

// FindAll returns tasks matching filter, newest first.
func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	qb := psql.Select(taskColumns...).From("tasks")
	if filter.AssignedTo != nil {
		qb = qb.Where(squirrel.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.AssignedBy != nil {
		qb = qb.Where(squirrel.Eq{"assigned_by": *filter.AssignedBy})
	}
	if filter.Status != nil {
		qb = qb.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Priority != nil {
		qb = qb.Where(squirrel.Eq{"priority": string(*filter.Priority)})
	}
	query, args, err := qb.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update writes every mutable column. A vanished row yields ErrNotFound.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query, args, err := psql.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("assigned_to", task.AssignedTo).
		Set("status", string(task.Status)).
		Set("priority", string(task.Priority)).
		Set("due_date", nullableTime(task.DueDate)).
		Set("updated_at", task.UpdatedAt).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task: %w", err)
	}
	return r.execAffecting(ctx, "update task", query, args...)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, to models.TaskStatus, at time.Time) error {
	query, args, err := psql.Update("tasks").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task status: %w", err)
	}
	return r.execAffecting(ctx, "update task status", query, args...)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("tasks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete task: %w", err)
	}
	return r.execAffecting(ctx, "delete task", query, args...)
}

func (r *taskRepository) execAffecting(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
