package repository

import (
	"context"

	"github.com/fastygo/taskr/domain"
)

// SessionRepository keeps live sessions outside the relational store.
// Get and Extend return domain.ErrSessionNotFound for unknown or expired ids;
// Delete of an unknown id is not an error.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
}
