package domain

import (
	"context"
	"fmt"
	"time"
)

// SessionType classifies a workout day by which step groups were completed.
type SessionType string

const (
	SessionWFH    SessionType = "wfh"
	SessionNonWFH SessionType = "non-wfh"
	SessionMixed  SessionType = "mixed"
)

// SessionAuto asks the workout service to infer the type from the steps.
const SessionAuto = "auto"

// ParseSessionType validates a stored or submitted session type.
func ParseSessionType(s string) (SessionType, error) {
	switch t := SessionType(s); t {
	case SessionWFH, SessionNonWFH, SessionMixed:
		return t, nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// WorkoutLog records the steps completed on one day. One per user and date.
type WorkoutLog struct {
	UserID         int64       `json:"-"`
	Date           string      `json:"date"`
	SessionType    SessionType `json:"sessionType"`
	CompletedSteps []string    `json:"completedSteps"`
	Notes          string      `json:"notes,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Active reports whether at least one step was completed.
func (w WorkoutLog) Active() bool {
	return len(w.CompletedSteps) > 0
}

// WorkoutLogRepository is the port for workout persistence.
type WorkoutLogRepository interface {
	// UpsertWorkoutLog replaces any existing log for the same user and date.
	UpsertWorkoutLog(ctx context.Context, log WorkoutLog) error
	// ListRecentWorkoutLogs returns up to limit logs ordered by date descending.
	ListRecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]WorkoutLog, error)
}
