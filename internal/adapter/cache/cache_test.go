package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

func sampleSnapshot() *app.Snapshot {
	return &app.Snapshot{
		Profile:     &domain.Profile{GoalWeightKg: 70, StartingWeightKg: 82, StartingDate: "2026-01-01"},
		WeightLogs:  []domain.WeightLog{{Date: "2026-01-10", WeightKg: 78}, {Date: "2026-01-01", WeightKg: 80}},
		WorkoutLogs: []domain.WorkoutLog{{Date: "2026-01-10", SessionType: domain.SessionWFH, CompletedSteps: []string{"m1"}}},
		FoodLogs:    []domain.FoodLog{{ID: "f1", EatenAt: "2026-01-10T08:00", Meal: "Oats", CalorieLevel: domain.CalorieLow}},
		TakenAt:     time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotCacheMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	snap, gen, err := c.GetSnapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Zero(t, gen)
}

func TestSnapshotCacheSetGet(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	want := sampleSnapshot()

	require.NoError(t, c.SetSnapshot(ctx, 1, 0, want))
	assert.True(t, mr.Exists("healthdash:snapshot:1:v0"))
	assert.Equal(t, time.Minute, mr.TTL("healthdash:snapshot:1:v0"))

	got, gen, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, gen)
	assert.Equal(t, want.WeightLogs, got.WeightLogs)
	assert.Equal(t, want.WorkoutLogs[0].CompletedSteps, got.WorkoutLogs[0].CompletedSteps)
	assert.Equal(t, want.FoodLogs[0].CalorieLevel, got.FoodLogs[0].CalorieLevel)
	assert.Equal(t, want.Profile.GoalWeightKg, got.Profile.GoalWeightKg)
	assert.True(t, want.TakenAt.Equal(got.TakenAt))

	other, _, err := c.GetSnapshot(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other, "users do not share snapshots")
}

func TestSnapshotCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.SetSnapshot(ctx, 1, 0, sampleSnapshot()))
	mr.FastForward(DefaultTTL + time.Second)

	snap, _, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetSnapshot(ctx, 1, 0, sampleSnapshot()))
	require.NoError(t, c.InvalidateSnapshot(ctx, 1))

	snap, gen, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Equal(t, int64(1), gen)
	assert.NoError(t, c.InvalidateSnapshot(ctx, 2), "invalidating an uncached user is fine")
}

func TestSnapshotCacheStaleGenerationIsNotServed(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	// A reader sees generation 0, then a write invalidates before the reader
	// stores what it loaded.
	_, gen, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, c.InvalidateSnapshot(ctx, 1))
	require.NoError(t, c.SetSnapshot(ctx, 1, gen, sampleSnapshot()))

	snap, cur, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Equal(t, int64(1), cur)
	assert.True(t, mr.Exists("healthdash:snapshot:1:v0"))

	require.NoError(t, c.SetSnapshot(ctx, 1, cur, sampleSnapshot()))
	snap, _, err = c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestSnapshotCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("healthdash:snapshot:1:v0", "{not json"))

	_, _, err := c.GetSnapshot(context.Background(), 1)
	assert.Error(t, err)
}

func TestSnapshotCacheBehindDashboard(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	snap := sampleSnapshot()
	require.NoError(t, c.SetSnapshot(ctx, 1, 0, snap))

	got, _, err := c.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, app.Compute(snap, "kg", now).Summary, app.Compute(got, "kg", now).Summary)
}

func TestDialFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr)
	assert.Error(t, err)
}
