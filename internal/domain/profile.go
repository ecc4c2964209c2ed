package domain

import (
	"context"
	"time"
)

// Profile holds the body metrics and goal of a user. Zero values mean "not set".
type Profile struct {
	UserID           int64     `json:"-"`
	HeightCm         float64   `json:"heightCm,omitempty"`
	StartingWeightKg float64   `json:"startingWeightKg,omitempty"`
	StartingDate     string    `json:"startingDate,omitempty"`
	GoalWeightKg     float64   `json:"goalWeightKg,omitempty"`
	TargetDate       string    `json:"targetDate,omitempty"`
	CurrentWeightKg  float64   `json:"currentWeightKg,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasStart reports whether the write-once starting weight and date are recorded.
func (p *Profile) HasStart() bool {
	return p != nil && p.StartingWeightKg > 0 && p.StartingDate != ""
}

// GoalWeight returns the goal weight and whether one is set.
func (p *Profile) GoalWeight() (float64, bool) {
	if p == nil || p.GoalWeightKg <= 0 {
		return 0, false
	}
	return p.GoalWeightKg, true
}

// ProfileRepository is the port for profile persistence.
// GetProfile returns ErrNotFound when the user has never saved a profile.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
}
