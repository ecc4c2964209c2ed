package app_test

import (
	"context"
	"sync"
	"time"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

type mockProfileRepo struct {
	getFn  func(ctx context.Context, userID int64) (*domain.Profile, error)
	saveFn func(ctx context.Context, p domain.Profile) error
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProfileRepo) SaveProfile(ctx context.Context, p domain.Profile) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, p)
	}
	return nil
}

type mockWeightRepo struct {
	upsertFn func(ctx context.Context, l domain.WeightLog) error
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error)
}

func (m *mockWeightRepo) UpsertWeightLog(ctx context.Context, l domain.WeightLog) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, l)
	}
	return nil
}

func (m *mockWeightRepo) ListWeightLogs(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockWorkoutRepo struct {
	upsertFn func(ctx context.Context, l domain.WorkoutLog) error
	listFn   func(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error)
}

func (m *mockWorkoutRepo) UpsertWorkoutLog(ctx context.Context, l domain.WorkoutLog) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, l)
	}
	return nil
}

func (m *mockWorkoutRepo) ListRecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

type mockFoodRepo struct {
	addFn  func(ctx context.Context, l domain.FoodLog) error
	listFn func(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error)
}

func (m *mockFoodRepo) AddFoodLog(ctx context.Context, l domain.FoodLog) error {
	if m.addFn != nil {
		return m.addFn(ctx, l)
	}
	return nil
}

func (m *mockFoodRepo) ListRecentFoodLogs(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

type recordingInvalidator struct {
	mu    sync.Mutex
	users []int64
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingInvalidator) calls() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.users...)
}

type memEntry struct {
	gen  int64
	snap *app.Snapshot
}

type memCache struct {
	mu          sync.Mutex
	snaps       map[int64]memEntry
	gens        map[int64]int64
	gets        int
	sets        int
	getErr      error
	invalidated []int64
	// afterGet runs once, unlocked, after the next successful GetSnapshot.
	afterGet func()
}

func newMemCache() *memCache {
	return &memCache{snaps: map[int64]memEntry{}, gens: map[int64]int64{}}
}

func (c *memCache) GetSnapshot(_ context.Context, userID int64) (*app.Snapshot, int64, error) {
	c.mu.Lock()
	c.gets++
	if c.getErr != nil {
		c.mu.Unlock()
		return nil, 0, c.getErr
	}
	gen := c.gens[userID]
	var snap *app.Snapshot
	if e, ok := c.snaps[userID]; ok && e.gen == gen {
		snap = e.snap
	}
	hook := c.afterGet
	c.afterGet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return snap, gen, nil
}

func (c *memCache) SetSnapshot(_ context.Context, userID, gen int64, s *app.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.snaps[userID] = memEntry{gen: gen, snap: s}
	return nil
}

func (c *memCache) InvalidateSnapshot(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type observedCall struct {
	op  string
	err error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (o *recordingObserver) ObserveStoreCall(op string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedCall{op: op, err: err})
}
