package app

import (
	"context"
	"errors"
	"time"

	"healthdash/internal/domain"
)

// ProfileInput is a submitted profile form. Starting values are only read the
// first time; afterwards the stored ones win.
type ProfileInput struct {
	HeightCm         float64 `json:"heightCm" validate:"gt=0,lte=300"`
	GoalWeightKg     float64 `json:"goalWeightKg" validate:"gt=0,lte=1000"`
	TargetDate       string  `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
	StartingWeightKg float64 `json:"startingWeightKg" validate:"gte=0,lte=1000"`
	StartingDate     string  `json:"startingDate" validate:"omitempty,datetime=2006-01-02"`
}

// ProfileService manages the user profile.
type ProfileService struct {
	repo       domain.ProfileRepository
	invalidate Invalidator
}

// NewProfileService creates a ProfileService. inv may be nil.
func NewProfileService(repo domain.ProfileRepository, inv Invalidator) *ProfileService {
	return &ProfileService{repo: repo, invalidate: inv}
}

// Get returns the stored profile, or nil when the user has none yet.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Save validates and stores the profile. The starting weight and date are
// write-once: once recorded, submitted starting values are ignored.
func (s *ProfileService) Save(ctx context.Context, userID int64, in ProfileInput) (*domain.Profile, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := domain.Profile{
		UserID:       userID,
		HeightCm:     in.HeightCm,
		GoalWeightKg: in.GoalWeightKg,
		TargetDate:   in.TargetDate,
		UpdatedAt:    time.Now(),
	}
	if existing.HasStart() {
		p.StartingWeightKg = existing.StartingWeightKg
		p.StartingDate = existing.StartingDate
	} else {
		ve := &ValidationError{Fields: map[string]string{}}
		if in.StartingWeightKg <= 0 {
			ve.Fields["startingWeightKg"] = "is required"
		}
		if in.StartingDate == "" {
			ve.Fields["startingDate"] = "is required"
		}
		if len(ve.Fields) > 0 {
			return nil, ve
		}
		p.StartingWeightKg = in.StartingWeightKg
		p.StartingDate = in.StartingDate
	}

	p.CurrentWeightKg = p.StartingWeightKg
	if existing != nil && existing.CurrentWeightKg > 0 {
		p.CurrentWeightKg = existing.CurrentWeightKg
	}

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, userID)
	}
	return &p, nil
}

// NeedsSetup reports whether the profile still lacks its starting weight and
// date.
func NeedsSetup(p *domain.Profile) bool {
	return !p.HasStart()
}
