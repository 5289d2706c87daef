package repository

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ClampLimit bounds page sizes shared by every TaskRepository implementation.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
