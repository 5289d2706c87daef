package repository

import (
	"context"

	"github.com/fastygo/taskr/domain"
)

type TaskFilter struct {
	OwnerID string
	Status  *domain.TaskStatus
	Limit   int
	Offset  int
}

// TaskRepository persists tasks. Update applies only when the stored version
// equals task.Version and bumps it; a stale version yields domain.ErrTaskConflict.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
