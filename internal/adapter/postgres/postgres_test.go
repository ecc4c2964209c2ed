package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/adapter/postgres"
	"healthdash/internal/domain"
)

// openTestDB connects to HEALTHDASH_TEST_DATABASE_URL. Tests touching a real
// Postgres are skipped without it.
func openTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("HEALTHDASH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HEALTHDASH_TEST_DATABASE_URL not set")
	}
	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newUser(t *testing.T, db *postgres.DB) int64 {
	t.Helper()
	u, err := db.Create(context.Background(), fmt.Sprintf("pgtest-%d", time.Now().UnixNano()), "")
	require.NoError(t, err)
	return u.ID
}

func TestWeightUpsertAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uid := newUser(t, db)

	for _, l := range []domain.WeightLog{
		{UserID: uid, Date: "2026-03-01", WeightKg: 81},
		{UserID: uid, Date: "2026-03-03", WeightKg: 80},
		{UserID: uid, Date: "2026-03-01", WeightKg: 80.5, Note: "re-weighed"},
	} {
		require.NoError(t, db.UpsertWeightLog(ctx, l))
	}

	logs, err := db.ListWeightLogs(ctx, uid, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2026-03-03", logs[0].Date)
	assert.Equal(t, 80.5, logs[1].WeightKg)
	assert.Equal(t, "re-weighed", logs[1].Note)
}

func TestWorkoutStepsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uid := newUser(t, db)

	require.NoError(t, db.UpsertWorkoutLog(ctx, domain.WorkoutLog{
		UserID: uid, Date: "2026-03-02", SessionType: domain.SessionMixed,
		CompletedSteps: []string{"m1", "ia"},
	}))

	logs, err := db.ListRecentWorkoutLogs(ctx, uid, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"m1", "ia"}, logs[0].CompletedSteps)
	assert.Equal(t, domain.SessionMixed, logs[0].SessionType)
}

func TestProfileNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetProfile(context.Background(), newUser(t, db))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uid := newUser(t, db)
	sessions := postgres.NewSessionRepo(db)

	token := fmt.Sprintf("tok-%d", time.Now().UnixNano())
	require.NoError(t, sessions.Create(ctx, uid, token, "agent", time.Now().Add(-time.Minute)))

	s, err := sessions.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "agent", s.UserAgent)

	require.NoError(t, sessions.DeleteExpired(ctx))
	_, err = sessions.GetByToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
