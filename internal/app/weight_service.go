package app

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"healthdash/internal/domain"
)

// WeightInput is one daily weight measurement.
type WeightInput struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg float64 `json:"weightKg" validate:"gt=0,lte=1000"`
	Note     string  `json:"note" validate:"max=500"`
}

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	repo       domain.WeightLogRepository
	profiles   domain.ProfileRepository
	invalidate Invalidator
}

// NewWeightService creates a WeightService. profiles and inv may be nil.
func NewWeightService(repo domain.WeightLogRepository, profiles domain.ProfileRepository, inv Invalidator) *WeightService {
	return &WeightService{repo: repo, profiles: profiles, invalidate: inv}
}

// Record validates and stores the weight of a day, replacing an earlier log
// for the same date, and makes it the profile's current weight.
func (s *WeightService) Record(ctx context.Context, userID int64, in WeightInput) (*domain.WeightLog, error) {
	in.Note = strings.TrimSpace(in.Note)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	entry := domain.WeightLog{
		UserID:    userID,
		Date:      in.Date,
		WeightKg:  in.WeightKg,
		Note:      in.Note,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.UpsertWeightLog(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.syncCurrentWeight(ctx, userID, in.WeightKg); err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("updating current weight failed")
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, userID)
	}
	return &entry, nil
}

func (s *WeightService) syncCurrentWeight(ctx context.Context, userID int64, kg float64) error {
	if s.profiles == nil {
		return nil
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = &domain.Profile{UserID: userID}, nil
	}
	if err != nil {
		return err
	}
	p.CurrentWeightKg = kg
	p.UpdatedAt = time.Now()
	return s.profiles.SaveProfile(ctx, *p)
}

// ListRecent returns the most recent weight logs, newest first.
func (s *WeightService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
	return s.repo.ListWeightLogs(ctx, userID, clampLimit(limit))
}
