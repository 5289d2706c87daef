package monitor

import "time"

type Status struct {
	Database  bool      `json:"database"`
	Redis     bool      `json:"redis"`
	Audit     bool      `json:"audit"`
	AuditSize int       `json:"audit_size"`
	LastCheck time.Time `json:"last_check"`
}

// Healthy reports whether the request path dependencies are reachable.
func (s Status) Healthy() bool {
	return s.Database && s.Redis
}
