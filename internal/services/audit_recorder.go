package services

import (
	"context"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/infrastructure/audit"
	"github.com/fastygo/taskr/usecase"
)

// AuditRecorder persists access decisions in the audit store.
type AuditRecorder struct {
	store *audit.Store
}

func NewAuditRecorder(store *audit.Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

func (r *AuditRecorder) RecordAccess(_ context.Context, decision usecase.AccessDecision) error {
	if r == nil || r.store == nil {
		return domain.ErrInvalidPayload
	}
	err := r.store.Record(audit.Entry{
		ActorID:   decision.Actor.UserID,
		ActorRole: string(decision.Actor.Role),
		TaskID:    decision.TaskID,
		OwnerID:   decision.OwnerID,
		Action:    string(decision.Action),
		Allowed:   decision.Allowed,
		Timestamp: decision.At,
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "audit store unavailable", err)
	}
	return nil
}

// Recent lists the newest audit entries.
func (r *AuditRecorder) Recent(limit int) ([]audit.Entry, error) {
	if r == nil || r.store == nil {
		return nil, domain.ErrInvalidPayload
	}
	entries, err := r.store.Recent(limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "audit store unavailable", err)
	}
	return entries, nil
}

var _ usecase.AccessRecorder = (*AuditRecorder)(nil)
