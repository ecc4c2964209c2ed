package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/analytics"
	"healthdash/internal/app"
	"healthdash/internal/domain"
)

var dashNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

type dashboardFixture struct {
	profiles *mockProfileRepo
	weights  *mockWeightRepo
	workouts *mockWorkoutRepo
	foods    *mockFoodRepo
}

func newDashboardFixture() *dashboardFixture {
	return &dashboardFixture{
		profiles: &mockProfileRepo{
			getFn: func(context.Context, int64) (*domain.Profile, error) {
				return &domain.Profile{
					HeightCm:         180,
					StartingWeightKg: 82,
					StartingDate:     "2026-01-01",
					GoalWeightKg:     70,
				}, nil
			},
		},
		weights: &mockWeightRepo{
			listFn: func(context.Context, int64, int) ([]domain.WeightLog, error) {
				return []domain.WeightLog{
					{Date: "2026-01-10", WeightKg: 78},
					{Date: "2026-01-01", WeightKg: 80},
				}, nil
			},
		},
		workouts: &mockWorkoutRepo{
			listFn: func(context.Context, int64, int) ([]domain.WorkoutLog, error) {
				return []domain.WorkoutLog{
					{Date: "2026-03-15", CompletedSteps: []string{"m1", "m2"}},
					{Date: "2026-03-14", CompletedSteps: []string{"ia"}},
					{Date: "2026-03-13"},
				}, nil
			},
		},
		foods: &mockFoodRepo{
			listFn: func(context.Context, int64, int) ([]domain.FoodLog, error) {
				return []domain.FoodLog{
					{EatenAt: "2026-03-15T08:00", CalorieLevel: domain.CalorieLow},
					{EatenAt: "2026-03-10T13:00", CalorieLevel: "low"},
					{EatenAt: "2026-02-01T19:00", CalorieLevel: domain.CalorieHigh},
					{EatenAt: "2026-03-14T19:00", CalorieLevel: "bogus"},
				}, nil
			},
		},
	}
}

func (f *dashboardFixture) service(opts app.DashboardOptions) *app.DashboardService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return dashNow }
	}
	return app.NewDashboardService(f.profiles, f.weights, f.workouts, f.foods, opts)
}

func TestDashboardBuild(t *testing.T) {
	svc := newDashboardFixture().service(app.DashboardOptions{})

	d, err := svc.Build(context.Background(), 1, "")
	require.NoError(t, err)

	s := d.Summary
	assert.Equal(t, analytics.ETAProjected, s.GoalETA.Status)
	assert.Equal(t, 36, s.GoalETA.Days)
	assert.Equal(t, 7, s.Consistency) // 2 of 30 days
	assert.Equal(t, analytics.MealMix{Low: 2, High: 1}, s.MealMix)
	assert.InDelta(t, -2.0/9.0, s.Slope, 1e-9)
	assert.Equal(t, "Weight trend: -0.222 kg/day over your recent logs.", s.TrendNote)
	assert.Equal(t, "Change across sample: -2.0 kg", s.WeightChange)
	assert.Equal(t, 78.0, s.CurrentWeight)
	assert.Equal(t, domain.UnitKg, s.Unit)
	assert.Equal(t, 2, s.WorkoutDays)
	assert.Equal(t, 3, s.MealsThisWeek)
	assert.False(t, s.NeedsSetup)
	assert.Equal(t, 2, s.WeightLogCount)
	assert.Equal(t, 3, s.WorkoutLogCount)
	assert.Equal(t, 4, s.FoodLogCount)

	assert.Len(t, d.Series.Workout.Labels, app.SeriesDays)
	assert.Equal(t, 2, d.Series.Workout.Steps[app.SeriesDays-1])
	assert.Equal(t, []string{"2026-01-01", "2026-01-10"}, d.Series.Weight.Labels)
	require.NotNil(t, d.Series.Weight.Goal[0])
	assert.Equal(t, 70.0, *d.Series.Weight.Goal[0])
	assert.Equal(t, dashNow, d.GeneratedAt)
}

func TestDashboardMealsThisWeekIsRolling(t *testing.T) {
	f := newDashboardFixture()
	f.foods = &mockFoodRepo{
		listFn: func(context.Context, int64, int) ([]domain.FoodLog, error) {
			return []domain.FoodLog{
				{EatenAt: "2026-03-08T08:59", CalorieLevel: domain.CalorieLow},
				{EatenAt: "2026-03-08T09:00", CalorieLevel: domain.CalorieLow},
				{EatenAt: "2026-03-08T21:00", CalorieLevel: domain.CalorieLow},
				{EatenAt: "2026-03-15T08:59", CalorieLevel: domain.CalorieLow},
				{EatenAt: "2026-03-15", CalorieLevel: domain.CalorieLow},
			}, nil
		},
	}

	d, err := f.service(app.DashboardOptions{}).Build(context.Background(), 1, "")
	require.NoError(t, err)
	// dashNow is 09:00 on the 15th: the cutoff is 09:00 on the 8th, inclusive.
	assert.Equal(t, 3, d.Summary.MealsThisWeek)
}

func TestDashboardBuildInPounds(t *testing.T) {
	svc := newDashboardFixture().service(app.DashboardOptions{})

	d, err := svc.Build(context.Background(), 1, domain.UnitLb)
	require.NoError(t, err)
	assert.InDelta(t, 176.37, d.Series.Weight.Values[0], 0.01)
	assert.InDelta(t, 171.96, d.Summary.CurrentWeight, 0.01)
}

func TestDashboardBuildRejectsUnknownUnit(t *testing.T) {
	svc := newDashboardFixture().service(app.DashboardOptions{})

	_, err := svc.Build(context.Background(), 1, "stone")
	var ve *app.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "unit")
}

func TestDashboardBuildWithoutData(t *testing.T) {
	empty := &dashboardFixture{
		profiles: &mockProfileRepo{},
		weights:  &mockWeightRepo{},
		workouts: &mockWorkoutRepo{},
		foods:    &mockFoodRepo{},
	}
	d, err := empty.service(app.DashboardOptions{}).Build(context.Background(), 1, "kg")
	require.NoError(t, err)

	s := d.Summary
	assert.Equal(t, analytics.ETAInsufficientData, s.GoalETA.Status)
	assert.Equal(t, "Need more weight logs", s.GoalETA.Message)
	assert.Zero(t, s.Consistency)
	assert.Zero(t, s.Slope)
	assert.Equal(t, "Weight trend is flat over the current sample window.", s.TrendNote)
	assert.Equal(t, "Add more weight logs in Profile to unlock trend insights.", s.WeightChange)
	assert.True(t, s.NeedsSetup)
	assert.Len(t, d.Series.Food.Low, app.SeriesDays)
	assert.Empty(t, d.Series.Weight.Labels)
}

func TestDashboardSnapshotUsesFetchLimits(t *testing.T) {
	f := newDashboardFixture()
	var mu sync.Mutex
	limits := map[string]int{}
	record := func(name string, limit int) {
		mu.Lock()
		defer mu.Unlock()
		limits[name] = limit
	}
	f.weights.listFn = func(_ context.Context, _ int64, limit int) ([]domain.WeightLog, error) {
		record("weight", limit)
		return nil, nil
	}
	f.workouts.listFn = func(_ context.Context, _ int64, limit int) ([]domain.WorkoutLog, error) {
		record("workout", limit)
		return nil, nil
	}
	f.foods.listFn = func(_ context.Context, _ int64, limit int) ([]domain.FoodLog, error) {
		record("food", limit)
		return nil, nil
	}
	svc := f.service(app.DashboardOptions{})
	snap, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, dashNow, snap.TakenAt)
	assert.Equal(t, app.WeightFetchLimit, limits["weight"])
	assert.Equal(t, app.WorkoutFetchLimit, limits["workout"])
	assert.Equal(t, app.FoodFetchLimit, limits["food"])
}

func TestDashboardSnapshotFailsAsAWhole(t *testing.T) {
	f := newDashboardFixture()
	denied := errors.New("permission denied")
	f.workouts.listFn = func(context.Context, int64, int) ([]domain.WorkoutLog, error) {
		return nil, denied
	}
	obs := &recordingObserver{}

	snap, err := f.service(app.DashboardOptions{Observer: obs}).Snapshot(context.Background(), 1)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "list_workout_logs")

	var failed []string
	for _, c := range obs.calls {
		if c.err != nil {
			failed = append(failed, c.op)
		}
	}
	assert.Contains(t, failed, "list_workout_logs")
}

func TestDashboardSnapshotTimesOut(t *testing.T) {
	f := newDashboardFixture()
	release := make(chan struct{})
	defer close(release)
	f.foods.listFn = func(context.Context, int64, int) ([]domain.FoodLog, error) {
		<-release
		return nil, nil
	}

	_, err := f.service(app.DashboardOptions{StoreTimeout: 20 * time.Millisecond}).Build(context.Background(), 1, "kg")
	assert.ErrorIs(t, err, app.ErrTimeout)
}

func TestDashboardMissingProfileIsNotAnError(t *testing.T) {
	f := newDashboardFixture()
	f.profiles.getFn = nil

	d, err := f.service(app.DashboardOptions{}).Build(context.Background(), 1, "kg")
	require.NoError(t, err)
	assert.True(t, d.Summary.NeedsSetup)
	assert.Equal(t, analytics.ETAInsufficientData, d.Summary.GoalETA.Status)
	assert.Equal(t, []*float64{nil, nil}, d.Series.Weight.Goal)
}

func TestDashboardUsesCache(t *testing.T) {
	f := newDashboardFixture()
	reads := 0
	list := f.weights.listFn
	f.weights.listFn = func(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
		reads++
		return list(ctx, userID, limit)
	}
	cache := newMemCache()
	svc := f.service(app.DashboardOptions{Cache: cache})
	ctx := context.Background()

	first, err := svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	second, err := svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.Equal(t, first.Summary, second.Summary)

	svc.Invalidate(ctx, 1)
	_, err = svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
	assert.Equal(t, []int64{1}, cache.invalidated)
}

func TestDashboardFallsBackWhenCacheFails(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	svc := newDashboardFixture().service(app.DashboardOptions{Cache: cache})

	d, err := svc.Build(context.Background(), 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Summary.WeightLogCount)
	assert.Zero(t, cache.sets, "no write without a known generation")
}

func TestDashboardCacheDropsSnapshotTakenBeforeInvalidate(t *testing.T) {
	f := newDashboardFixture()
	reads := 0
	list := f.weights.listFn
	f.weights.listFn = func(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
		reads++
		return list(ctx, userID, limit)
	}
	cache := newMemCache()
	svc := f.service(app.DashboardOptions{Cache: cache})
	ctx := context.Background()

	// A write lands between the cache read and the store read of a Build.
	cache.afterGet = func() { svc.Invalidate(ctx, 1) }
	_, err := svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 2, reads, "snapshot filed under the old generation must not be served")

	_, err = svc.Build(ctx, 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
}

func TestComputeIsDeterministic(t *testing.T) {
	f := newDashboardFixture()
	snap, err := f.service(app.DashboardOptions{}).Snapshot(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, app.Compute(snap, "kg", dashNow), app.Compute(snap, "kg", dashNow))
}
