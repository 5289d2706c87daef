package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskr/domain"
	appLogger "github.com/fastygo/taskr/pkg/logger"
	"github.com/fastygo/taskr/repository"
)

// Authenticator verifies a name/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, name, password string) (*domain.User, error)
}

type UseCase struct {
	credentials Authenticator
	sessions    repository.SessionRepository
	ttl         time.Duration
	logger      *zap.Logger
}

func New(credentials Authenticator, sessions repository.SessionRepository, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &UseCase{
		credentials: credentials,
		sessions:    sessions,
		ttl:         ttl,
		logger:      logger,
	}
}

// Login authenticates the pair and opens a session for the user.
func (uc *UseCase) Login(ctx context.Context, name, password string) (*domain.Session, error) {
	user, err := uc.credentials.Authenticate(ctx, name, password)
	if err != nil {
		return nil, err
	}
	return uc.StartSession(ctx, user)
}

// StartSession binds a new session to the user's id and role.
func (uc *UseCase) StartSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.log(ctx).Info("session started", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return session, nil
}

// CurrentSession resolves sessionID; a missing or expired session is ErrNotAuthenticated.
func (uc *UseCase) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrNotAuthenticated
	}
	return session, nil
}

// RefreshSession extends the session by ttl, never beyond the configured session TTL.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 || ttl > uc.ttl {
		ttl = uc.ttl
	}
	if _, err := uc.CurrentSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return uc.sessions.Get(ctx, sessionID)
}

// EndSession clears the binding. Ending an unknown session is not an error.
func (uc *UseCase) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	uc.log(ctx).Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// RequireSession rejects operations attempted without a session.
func RequireSession(session *domain.Session) error {
	if session == nil || session.UserID == "" {
		return domain.ErrNotAuthenticated
	}
	return nil
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, uc.logger)
}
