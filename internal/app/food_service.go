package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthdash/internal/domain"
)

// FoodInput is one submitted meal.
type FoodInput struct {
	EatenAt      string `json:"eatenAt" validate:"required"`
	Meal         string `json:"meal" validate:"required,max=200"`
	CalorieLevel string `json:"calorieLevel" validate:"required"`
	MealType     string `json:"mealType" validate:"max=50"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// eatenAtLayouts are accepted in order. Layouts without a zone are read in
// local time.
var eatenAtLayouts = []string{
	domain.EatenAtLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	domain.DateLayout,
}

// FoodService records meals.
type FoodService struct {
	repo       domain.FoodLogRepository
	invalidate Invalidator
}

// NewFoodService creates a FoodService. inv may be nil.
func NewFoodService(repo domain.FoodLogRepository, inv Invalidator) *FoodService {
	return &FoodService{repo: repo, invalidate: inv}
}

// Add validates and stores a meal under a fresh id. The calorie level is
// normalised to its canonical spelling and eatenAt to EatenAtLayout.
func (s *FoodService) Add(ctx context.Context, userID int64, in FoodInput) (*domain.FoodLog, error) {
	in.Meal = strings.TrimSpace(in.Meal)
	in.MealType = strings.TrimSpace(in.MealType)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	eatenAt, ok := parseEatenAt(in.EatenAt)
	if !ok {
		return nil, invalidField("eatenAt", "must be a local date and time like 2006-01-02T15:04")
	}
	level, err := domain.ParseCalorieLevel(in.CalorieLevel)
	if err != nil {
		ve := invalidField("calorieLevel", "must be Low, Medium or High")
		ve.Err = err
		return nil, ve
	}

	entry := domain.FoodLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		EatenAt:      eatenAt,
		Meal:         in.Meal,
		CalorieLevel: level,
		MealType:     in.MealType,
		Notes:        in.Notes,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.AddFoodLog(ctx, entry); err != nil {
		return nil, err
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, userID)
	}
	return &entry, nil
}

// ListRecent returns the most recent meals, newest first.
func (s *FoodService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error) {
	return s.repo.ListRecentFoodLogs(ctx, userID, clampLimit(limit))
}

func parseEatenAt(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(time.Local).Format(domain.EatenAtLayout), true
	}
	for _, layout := range eatenAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.Format(domain.EatenAtLayout), true
		}
	}
	return "", false
}
