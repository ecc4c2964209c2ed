package domain

import (
	"context"
	"time"
)

// DateLayout is the zero-padded calendar date format used for every log key.
// Dates in this layout order correctly under plain string comparison.
const DateLayout = "2006-01-02"

// WeightLog is a single daily weight measurement. One per user and date.
type WeightLog struct {
	UserID    int64     `json:"-"`
	Date      string    `json:"date"`
	WeightKg  float64   `json:"weightKg"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WeightLogRepository is the port for weight persistence.
type WeightLogRepository interface {
	// UpsertWeightLog replaces any existing log for the same user and date.
	UpsertWeightLog(ctx context.Context, log WeightLog) error
	// ListWeightLogs returns up to limit logs ordered by date descending.
	ListWeightLogs(ctx context.Context, userID int64, limit int) ([]WeightLog, error)
}
