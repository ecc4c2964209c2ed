package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"healthdash/internal/domain"
)

// WorkoutInput is the checklist submitted for one day.
type WorkoutInput struct {
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	SessionType    string   `json:"sessionType" validate:"omitempty,oneof=auto wfh non-wfh mixed"`
	CompletedSteps []string `json:"completedSteps"`
	Notes          string   `json:"notes" validate:"max=1000"`
}

// WorkoutService records daily workout checklists.
type WorkoutService struct {
	repo       domain.WorkoutLogRepository
	invalidate Invalidator
}

// NewWorkoutService creates a WorkoutService. inv may be nil.
func NewWorkoutService(repo domain.WorkoutLogRepository, inv Invalidator) *WorkoutService {
	return &WorkoutService{repo: repo, invalidate: inv}
}

// Save stores the workout log of a day. Unknown steps are rejected and
// repeated ones collapsed. An empty or "auto" session type is inferred from
// the completed steps.
func (s *WorkoutService) Save(ctx context.Context, userID int64, in WorkoutInput) (*domain.WorkoutLog, error) {
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	steps := make([]string, 0, len(in.CompletedSteps))
	seen := make(map[string]struct{}, len(in.CompletedSteps))
	for _, id := range in.CompletedSteps {
		if _, ok := domain.LookupStep(id); !ok {
			return nil, invalidField("completedSteps", fmt.Sprintf("unknown step %q", id))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		steps = append(steps, id)
	}

	sessionType := domain.InferSessionType(steps)
	if in.SessionType != "" && in.SessionType != domain.SessionAuto {
		t, err := domain.ParseSessionType(in.SessionType)
		if err != nil {
			return nil, invalidField("sessionType", err.Error())
		}
		sessionType = t
	}

	entry := domain.WorkoutLog{
		UserID:         userID,
		Date:           in.Date,
		SessionType:    sessionType,
		CompletedSteps: steps,
		Notes:          in.Notes,
		UpdatedAt:      time.Now(),
	}
	if err := s.repo.UpsertWorkoutLog(ctx, entry); err != nil {
		return nil, err
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, userID)
	}
	return &entry, nil
}

// ListRecent returns the most recent workout logs, newest first.
func (s *WorkoutService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error) {
	return s.repo.ListRecentWorkoutLogs(ctx, userID, clampLimit(limit))
}
