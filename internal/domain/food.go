package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EatenAtLayout is the canonical local date-time format of FoodLog.EatenAt.
// Its first ten characters are the calendar date in DateLayout.
const EatenAtLayout = "2006-01-02T15:04"

// ErrInvalidCalorieLevel is returned when a calorie level is not one of the
// known levels.
var ErrInvalidCalorieLevel = errors.New("calorie level must be Low, Medium or High")

// CalorieLevel is a coarse calorie rating of a meal.
type CalorieLevel string

const (
	CalorieLow    CalorieLevel = "Low"
	CalorieMedium CalorieLevel = "Medium"
	CalorieHigh   CalorieLevel = "High"
)

// CalorieLevels lists the levels in ascending order.
func CalorieLevels() []CalorieLevel {
	return []CalorieLevel{CalorieLow, CalorieMedium, CalorieHigh}
}

// NormalizeCalorieLevel maps any casing of a known level to its canonical
// value.
func NormalizeCalorieLevel(s string) (CalorieLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CalorieLow, true
	case "medium":
		return CalorieMedium, true
	case "high":
		return CalorieHigh, true
	}
	return "", false
}

// ParseCalorieLevel is NormalizeCalorieLevel returning an error for unknown
// values.
func ParseCalorieLevel(s string) (CalorieLevel, error) {
	level, ok := NormalizeCalorieLevel(s)
	if !ok {
		return "", fmt.Errorf("%w: got %q", ErrInvalidCalorieLevel, s)
	}
	return level, nil
}

// FoodLog is a single meal entry. Many may exist per day.
type FoodLog struct {
	ID           string       `json:"id"`
	UserID       int64        `json:"-"`
	EatenAt      string       `json:"eatenAt"`
	Meal         string       `json:"meal"`
	CalorieLevel CalorieLevel `json:"calorieLevel"`
	MealType     string       `json:"mealType,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Day returns the calendar date portion of EatenAt, or "" when it is too short.
func (f FoodLog) Day() string {
	if len(f.EatenAt) < len(DateLayout) {
		return ""
	}
	return f.EatenAt[:len(DateLayout)]
}

// FoodLogRepository is the port for food persistence.
type FoodLogRepository interface {
	AddFoodLog(ctx context.Context, log FoodLog) error
	// ListRecentFoodLogs returns up to limit logs ordered by EatenAt descending.
	ListRecentFoodLogs(ctx context.Context, userID int64, limit int) ([]FoodLog, error)
}
