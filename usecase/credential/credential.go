package credential

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskr/domain"
	appLogger "github.com/fastygo/taskr/pkg/logger"
	"github.com/fastygo/taskr/repository"
)

// Options tune credential handling.
type Options struct {
	EmailCaseInsensitive bool
	BcryptCost           int
}

type UseCase struct {
	users     repository.UserRepository
	opts      Options
	dummyHash []byte
	logger    *zap.Logger
}

func New(users repository.UserRepository, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		if opts.BcryptCost != 0 {
			logger.Warn("bcrypt cost out of range, using default", zap.Int("cost", opts.BcryptCost))
		}
		opts.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the name is unknown so both failure paths hash once.
	dummy, err := bcrypt.GenerateFromPassword([]byte("taskr-unknown-user"), opts.BcryptCost)
	if err != nil {
		logger.Error("dummy password hash unavailable, unknown names will fail fast", zap.Error(err))
	}
	return &UseCase{
		users:     users,
		opts:      opts,
		dummyHash: dummy,
		logger:    logger,
	}
}

// Register creates a user with the default role.
func (uc *UseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return uc.create(ctx, name, email, password, domain.RoleUser)
}

// RegisterAdmin creates a user holding the admin role. It is reserved for provisioning tools.
func (uc *UseCase) RegisterAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	return uc.create(ctx, name, email, password, domain.RoleAdmin)
}

func (uc *UseCase) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = uc.normalizeEmail(email)

	switch {
	case name == "":
		return nil, domain.NewValidationError("name", "This field is required.")
	case email == "":
		return nil, domain.NewValidationError("email", "This field is required.")
	case password == "":
		return nil, domain.NewValidationError("password", "This field is required.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			uc.log(ctx).Info("registration rejected: duplicate user", zap.String("name", name))
		}
		return nil, err
	}

	uc.log(ctx).Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown name and for a wrong password alike.
func (uc *UseCase) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	user, err := uc.users.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		uc.log(ctx).Debug("authentication failed", zap.String("reason", "unknown_user"))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log(ctx).Debug("authentication failed", zap.String("reason", "password_mismatch"), zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (uc *UseCase) normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if uc.opts.EmailCaseInsensitive {
		email = strings.ToLower(email)
	}
	return email
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, uc.logger)
}
