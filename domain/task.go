package domain

import "time"

// TaskStatus is stored as an integer flag: 1 while open, 0 once closed.
type TaskStatus int

const (
	StatusClosed TaskStatus = 0
	StatusOpen   TaskStatus = 1
)

func (s TaskStatus) String() string {
	if s == StatusOpen {
		return "open"
	}
	return "closed"
}

// ParseTaskStatus accepts "open"/"closed" as well as the numeric flags.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	switch value {
	case "open", "1":
		return StatusOpen, true
	case "closed", "0":
		return StatusClosed, true
	default:
		return StatusClosed, false
	}
}

// Task represents a user-owned activity item.
type Task struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Name       string     `json:"name"`
	DueDate    time.Time  `json:"due_date"`
	Priority   int        `json:"priority"`
	PostedDate time.Time  `json:"posted_date"`
	Status     TaskStatus `json:"status"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusClosed
}

// Action names a task mutation subject to the access policy.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
