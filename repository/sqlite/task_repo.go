package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/repository"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed TaskRepository.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, user_id, name, due_date, priority, posted_date, status, version, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE (? = '' OR user_id = ?)
	  AND (? IS NULL OR status = ?)
	ORDER BY rowid ASC
	LIMIT ? OFFSET ?
	`
	var status interface{}
	if filter.Status != nil {
		status = int(*filter.Status)
	}

	rows, err := r.db.QueryContext(ctx, query,
		filter.OwnerID, filter.OwnerID,
		status, status,
		repository.ClampLimit(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.Version = 1
	task.CreatedAt = now
	task.UpdatedAt = now

	const query = `
	INSERT INTO tasks (id, user_id, name, due_date, priority, posted_date, status, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Name,
		task.DueDate,
		task.Priority,
		task.PostedDate,
		int(task.Status),
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	updatedAt := time.Now().UTC()
	const query = `
	UPDATE tasks
	SET name = ?,
		due_date = ?,
		priority = ?,
		posted_date = ?,
		status = ?,
		version = version + 1,
		updated_at = ?
	WHERE id = ? AND version = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		task.Name,
		task.DueDate,
		task.Priority,
		task.PostedDate,
		int(task.Status),
		updatedAt,
		task.ID,
		task.Version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.missOrConflict(ctx, task.ID)
	}

	task.Version++
	task.UpdatedAt = updatedAt
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrTaskConflict
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var (
		task   domain.Task
		status int
	)
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Name,
		&task.DueDate,
		&task.Priority,
		&task.PostedDate,
		&status,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
