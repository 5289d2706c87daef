package repository

import (
	"context"

	"github.com/fastygo/taskr/domain"
)

// UserRepository persists accounts. Create must report name or email
// collisions as domain.ErrDuplicateUser.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
