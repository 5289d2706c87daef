package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded access policy decision on a task mutation.
type Entry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	Action    string    `json:"action"`
	Allowed   bool      `json:"allowed"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC()
}
