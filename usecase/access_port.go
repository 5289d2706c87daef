package usecase

import (
	"context"
	"time"

	"github.com/fastygo/taskr/domain"
)

// AccessDecision is the outcome of one access policy evaluation.
type AccessDecision struct {
	Actor   domain.Actor
	TaskID  string
	OwnerID string
	Action  domain.Action
	Allowed bool
	At      time.Time
}

// AccessRecorder abstracts the audit trail so use cases stay storage-agnostic.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, decision AccessDecision) error
}
