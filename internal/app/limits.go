package app

// List limits of the history endpoints.
const (
	DefaultListLimit = 10
	MaxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
