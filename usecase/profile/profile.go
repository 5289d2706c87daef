package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/repository"
	"github.com/fastygo/taskr/usecase/auth"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the account behind the session.
func (uc *UseCase) GetProfile(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, session.UserID)
}
