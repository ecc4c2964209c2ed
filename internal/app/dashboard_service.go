package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"healthdash/internal/analytics"
	"healthdash/internal/domain"
)

// Fetch limits of one dashboard snapshot.
const (
	WeightFetchLimit  = 260
	WorkoutFetchLimit = 180
	FoodFetchLimit    = 260
)

// SeriesDays is the length of the daily workout and food series.
const SeriesDays = 30

const (
	trendFlatNote    = "Weight trend is flat over the current sample window."
	weightChangeHint = "Add more weight logs in Profile to unlock trend insights."
)

// Snapshot is a point-in-time read of everything the dashboard is computed
// from. The four parts are fetched together and never mixed across refreshes.
type Snapshot struct {
	Profile     *domain.Profile     `json:"profile"`
	WeightLogs  []domain.WeightLog  `json:"weightLogs"`
	WorkoutLogs []domain.WorkoutLog `json:"workoutLogs"`
	FoodLogs    []domain.FoodLog    `json:"foodLogs"`
	TakenAt     time.Time           `json:"takenAt"`
}

// Summary holds the scalar dashboard metrics.
type Summary struct {
	GoalETA         analytics.ETA     `json:"goalEta"`
	Consistency     int               `json:"consistency"`
	MealMix         analytics.MealMix `json:"mealMix"`
	Slope           float64           `json:"slopeKgPerDay"`
	TrendNote       string            `json:"trendNote"`
	WeightChange    string            `json:"weightChange"`
	CurrentWeight   float64           `json:"currentWeight,omitempty"`
	Unit            string            `json:"unit"`
	WorkoutDays     int               `json:"workoutDays"`
	MealsThisWeek   int               `json:"mealsThisWeek"`
	NeedsSetup      bool              `json:"needsSetup"`
	WeightLogCount  int               `json:"weightLogCount"`
	WorkoutLogCount int               `json:"workoutLogCount"`
	FoodLogCount    int               `json:"foodLogCount"`
}

// Series holds the chart-ready series.
type Series struct {
	Workout analytics.WorkoutSeries `json:"workout"`
	Food    analytics.FoodSeries    `json:"food"`
	Weight  analytics.WeightSeries  `json:"weight"`
}

// Dashboard is the rendered result of one refresh.
type Dashboard struct {
	Summary     Summary   `json:"summary"`
	Series      Series    `json:"series"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// SnapshotCache stores recent snapshots per user under a generation that
// InvalidateSnapshot advances. GetSnapshot returns the generation current at
// the time of the read with a nil snapshot on a miss. SetSnapshot files the
// snapshot under the generation it was read at, so a snapshot taken before an
// invalidation is never served after it.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, userID int64) (*Snapshot, int64, error)
	SetSnapshot(ctx context.Context, userID, gen int64, snap *Snapshot) error
	InvalidateSnapshot(ctx context.Context, userID int64) error
}

// StoreObserver is told about every store call made for a snapshot.
type StoreObserver interface {
	ObserveStoreCall(op string, elapsed time.Duration, err error)
}

// Invalidator drops any cached dashboard state of a user after a write.
type Invalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

// DashboardOptions tunes a DashboardService. Zero values pick defaults.
type DashboardOptions struct {
	StoreTimeout time.Duration
	Cache        SnapshotCache
	Observer     StoreObserver
	Now          func() time.Time
}

// DashboardService assembles snapshots and runs the analytics over them.
type DashboardService struct {
	profiles domain.ProfileRepository
	weights  domain.WeightLogRepository
	workouts domain.WorkoutLogRepository
	foods    domain.FoodLogRepository

	timeout  time.Duration
	cache    SnapshotCache
	observer StoreObserver
	now      func() time.Time
}

// NewDashboardService creates a DashboardService over the given repositories.
func NewDashboardService(
	profiles domain.ProfileRepository,
	weights domain.WeightLogRepository,
	workouts domain.WorkoutLogRepository,
	foods domain.FoodLogRepository,
	opts DashboardOptions,
) *DashboardService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DashboardService{
		profiles: profiles,
		weights:  weights,
		workouts: workouts,
		foods:    foods,
		timeout:  opts.StoreTimeout,
		cache:    opts.Cache,
		observer: opts.Observer,
		now:      opts.Now,
	}
}

// storeCall fronts one repository call with the timeout wrapper and reports
// it to the observer.
func storeCall[T any](ctx context.Context, s *DashboardService, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := CallWithTimeout(ctx, s.timeout, fn)
	if s.observer != nil {
		s.observer.ObserveStoreCall(op, time.Since(start), err)
	}
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Snapshot reads the profile and the three log sets of a user in parallel.
// It fails as a whole if any of the four reads fails; a missing profile is
// not a failure.
func (s *DashboardService) Snapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := storeCall(gctx, s, "get_profile", func(ctx context.Context) (*domain.Profile, error) {
			return s.profiles.GetProfile(ctx, userID)
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		snap.Profile = p
		return nil
	})
	g.Go(func() error {
		logs, err := storeCall(gctx, s, "list_weight_logs", func(ctx context.Context) ([]domain.WeightLog, error) {
			return s.weights.ListWeightLogs(ctx, userID, WeightFetchLimit)
		})
		snap.WeightLogs = logs
		return err
	})
	g.Go(func() error {
		logs, err := storeCall(gctx, s, "list_workout_logs", func(ctx context.Context) ([]domain.WorkoutLog, error) {
			return s.workouts.ListRecentWorkoutLogs(ctx, userID, WorkoutFetchLimit)
		})
		snap.WorkoutLogs = logs
		return err
	})
	g.Go(func() error {
		logs, err := storeCall(gctx, s, "list_food_logs", func(ctx context.Context) ([]domain.FoodLog, error) {
			return s.foods.ListRecentFoodLogs(ctx, userID, FoodFetchLimit)
		})
		snap.FoodLogs = logs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.TakenAt = s.now()
	return snap, nil
}

// Build returns the dashboard of a user with weights expressed in unit ("kg"
// when empty). Cached snapshots are used when a cache is configured.
func (s *DashboardService) Build(ctx context.Context, userID int64, unit string) (*Dashboard, error) {
	if unit == "" {
		unit = domain.UnitKg
	}
	if !domain.ValidUnit(unit) {
		return nil, invalidField("unit", `must be "kg" or "lb"`)
	}

	snap, err := s.cachedSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := Compute(snap, unit, s.now())
	return &d, nil
}

func (s *DashboardService) cachedSnapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	if s.cache == nil {
		return s.Snapshot(ctx, userID)
	}
	logger := log.WithField("user_id", userID)

	snap, gen, err := s.cache.GetSnapshot(ctx, userID)
	if err == nil && snap != nil {
		return snap, nil
	}
	if err != nil {
		logger.WithError(err).Warn("dashboard cache read failed")
	}

	fresh, serr := s.Snapshot(ctx, userID)
	if serr != nil {
		return nil, serr
	}
	// Without a known generation the write could land on a stale key.
	if err != nil {
		return fresh, nil
	}
	if err := s.cache.SetSnapshot(ctx, userID, gen, fresh); err != nil {
		logger.WithError(err).Warn("dashboard cache write failed")
	}
	return fresh, nil
}

// Invalidate drops the cached snapshot of a user so the next Build reads the
// store again.
func (s *DashboardService) Invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSnapshot(ctx, userID); err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("dashboard cache invalidation failed")
	}
}

// Compute runs every analytic over a snapshot. It is deterministic for a
// given snapshot, unit and now.
func Compute(snap *Snapshot, unit string, now time.Time) Dashboard {
	recent := analytics.RecentWeightLogs(snap.WeightLogs, analytics.TrendWindow)
	slope := analytics.TrendSlope(recent)

	sum := Summary{
		GoalETA:         analytics.EstimateETA(snap.Profile, snap.WeightLogs, now),
		Consistency:     analytics.ConsistencyScore(snap.WorkoutLogs, analytics.DefaultConsistencySpan, now),
		MealMix:         analytics.MealMixOf(snap.FoodLogs),
		Slope:           slope,
		TrendNote:       trendNote(slope),
		WeightChange:    weightChange(snap.WeightLogs),
		Unit:            unit,
		WorkoutDays:     analytics.ActiveWorkoutDays(snap.WorkoutLogs),
		MealsThisWeek:   mealsWithin(snap.FoodLogs, 7, now),
		NeedsSetup:      NeedsSetup(snap.Profile),
		WeightLogCount:  len(snap.WeightLogs),
		WorkoutLogCount: len(snap.WorkoutLogs),
		FoodLogCount:    len(snap.FoodLogs),
	}
	if len(recent) > 0 {
		sum.CurrentWeight = domain.ConvertWeight(recent[0].WeightKg, domain.UnitKg, unit)
	} else if snap.Profile != nil && snap.Profile.CurrentWeightKg > 0 {
		sum.CurrentWeight = domain.ConvertWeight(snap.Profile.CurrentWeightKg, domain.UnitKg, unit)
	}

	goal, _ := snap.Profile.GoalWeight()
	return Dashboard{
		Summary: sum,
		Series: Series{
			Workout: analytics.BuildWorkoutSeries(snap.WorkoutLogs, SeriesDays, now),
			Food:    analytics.BuildFoodSeries(snap.FoodLogs, SeriesDays, now),
			Weight:  analytics.BuildWeightSeries(snap.WeightLogs, goal).InUnit(unit),
		},
		GeneratedAt: now,
	}
}

func trendNote(slope float64) string {
	if slope == 0 {
		return trendFlatNote
	}
	return fmt.Sprintf("Weight trend: %.3f kg/day over your recent logs.", slope)
}

func weightChange(logs []domain.WeightLog) string {
	if len(logs) < 2 {
		return weightChangeHint
	}
	all := analytics.RecentWeightLogs(logs, -1)
	newest, oldest := all[0], all[len(all)-1]
	return fmt.Sprintf("Change across sample: %.1f kg", newest.WeightKg-oldest.WeightKg)
}

// mealsWithin counts logs eaten at or after now minus days. EatenAt is read in
// now's location; unparsable values are skipped.
func mealsWithin(logs []domain.FoodLog, days int, now time.Time) int {
	cutoff := now.AddDate(0, 0, -days)
	n := 0
	for _, l := range logs {
		at, err := time.ParseInLocation(domain.EatenAtLayout, l.EatenAt, now.Location())
		if err != nil {
			continue
		}
		if !at.Before(cutoff) {
			n++
		}
	}
	return n
}
