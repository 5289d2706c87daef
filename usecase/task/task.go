package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskr/domain"
	appLogger "github.com/fastygo/taskr/pkg/logger"
	"github.com/fastygo/taskr/repository"
	"github.com/fastygo/taskr/usecase"
	"github.com/fastygo/taskr/usecase/auth"
)

const maxConflictRetries = 3

// DateLayouts lists the accepted due and posted date formats.
var DateLayouts = []string{"2006-01-02", "01/02/2006"}

// CreateInput carries unvalidated task fields as submitted.
type CreateInput struct {
	Name       string
	DueDate    string
	Priority   int
	PostedDate string
}

// ListFilter narrows a task listing.
type ListFilter struct {
	Status *domain.TaskStatus
	Limit  int
	Offset int
}

type UseCase struct {
	tasks    repository.TaskRepository
	recorder usecase.AccessRecorder
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, recorder usecase.AccessRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateTask validates input and stores an open task owned by the session user.
func (uc *UseCase) CreateTask(ctx context.Context, session *domain.Session, input CreateInput) (*domain.Task, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	task, err := buildTask(session.UserID, input)
	if err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.log(ctx).Info("task created", zap.String("task_id", created.ID), zap.String("owner_id", created.OwnerID))
	return created, nil
}

// ListTasks returns tasks owned by the session user in insertion order.
func (uc *UseCase) ListTasks(ctx context.Context, session *domain.Session, filter ListFilter) ([]domain.Task, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	return uc.tasks.List(ctx, repository.TaskFilter{
		OwnerID: session.UserID,
		Status:  filter.Status,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// CompleteTask closes the task. Closing an already closed task succeeds without a write.
func (uc *UseCase) CompleteTask(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		task, err := uc.authorize(ctx, session, id, domain.ActionUpdate, attempt == 0)
		if err != nil {
			return nil, err
		}
		if task.IsCompleted() {
			return task, nil
		}

		task.Status = domain.StatusClosed
		err = uc.tasks.Update(ctx, task)
		if err == nil {
			uc.log(ctx).Info("task completed", zap.String("task_id", id), zap.String("actor_id", session.UserID))
			return task, nil
		}
		if !errors.Is(err, domain.ErrTaskConflict) || attempt+1 >= maxConflictRetries {
			return nil, err
		}
		uc.log(ctx).Debug("task version conflict, retrying", zap.String("task_id", id), zap.Int("attempt", attempt+1))
	}
}

// DeleteTask removes the task permanently.
func (uc *UseCase) DeleteTask(ctx context.Context, session *domain.Session, id string) error {
	if err := auth.RequireSession(session); err != nil {
		return err
	}
	if _, err := uc.authorize(ctx, session, id, domain.ActionDelete, true); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.log(ctx).Info("task deleted", zap.String("task_id", id), zap.String("actor_id", session.UserID))
	return nil
}

// authorize loads the task and applies the access policy before any mutation.
func (uc *UseCase) authorize(ctx context.Context, session *domain.Session, id string, action domain.Action, record bool) (*domain.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrTaskNotFound
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := session.Actor()
	allowed := domain.CanMutate(actor, task)
	if record {
		uc.record(ctx, usecase.AccessDecision{
			Actor:   actor,
			TaskID:  task.ID,
			OwnerID: task.OwnerID,
			Action:  action,
			Allowed: allowed,
			At:      time.Now(),
		})
	}
	if !allowed {
		uc.log(ctx).Warn("task mutation forbidden",
			zap.String("task_id", task.ID),
			zap.String("actor_id", actor.UserID),
			zap.String("action", string(action)))
		return nil, domain.NewForbiddenError(action)
	}
	return task, nil
}

func (uc *UseCase) record(ctx context.Context, decision usecase.AccessDecision) {
	if uc.recorder == nil {
		return
	}
	if err := uc.recorder.RecordAccess(ctx, decision); err != nil {
		uc.log(ctx).Warn("failed to record access decision", zap.String("task_id", decision.TaskID), zap.Error(err))
	}
}

func buildTask(ownerID string, input CreateInput) (*domain.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "This field is required.")
	}
	due, err := parseDate("due_date", input.DueDate)
	if err != nil {
		return nil, err
	}
	if input.Priority <= 0 {
		return nil, domain.NewValidationError("priority", "Priority must be a positive integer.")
	}
	posted, err := parseDate("posted_date", input.PostedDate)
	if err != nil {
		return nil, err
	}

	return &domain.Task{
		OwnerID:    ownerID,
		Name:       name,
		DueDate:    due,
		Priority:   input.Priority,
		PostedDate: posted,
		Status:     domain.StatusOpen,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.NewValidationError(field, "This field is required.")
	}
	for _, layout := range DateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, domain.NewValidationError(field, "Not a valid date value.")
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, uc.logger)
}
