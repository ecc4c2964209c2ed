package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"healthdash/internal/app"
)

type builderFunc func(ctx context.Context, userID int64, unit string) (*app.Dashboard, error)

func (f builderFunc) Build(ctx context.Context, userID int64, unit string) (*app.Dashboard, error) {
	return f(ctx, userID, unit)
}

func TestRefresherRunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var builds atomic.Int32
	builder := builderFunc(func(_ context.Context, userID int64, unit string) (*app.Dashboard, error) {
		assert.Equal(t, int64(5), userID)
		assert.Equal(t, "lb", unit)
		n := builds.Add(1)
		return &app.Dashboard{Summary: app.Summary{WeightLogCount: int(n)}}, nil
	})
	r := app.NewRefresher(builder, 5, "lb", 5*time.Millisecond)
	assert.Nil(t, r.Latest())

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan app.Update, 64)
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(u app.Update) {
			select {
			case updates <- u:
			default:
			}
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case u := <-updates:
			require.NoError(t, u.Err)
			require.NotNil(t, u.Dashboard)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for refresh")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	require.NotNil(t, r.Latest())
	assert.GreaterOrEqual(t, r.Latest().Summary.WeightLogCount, 3)
}

func TestRefresherReportsErrorsAndKeepsLastGood(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	boom := errors.New("store unreachable")
	var calls atomic.Int32
	builder := builderFunc(func(context.Context, int64, string) (*app.Dashboard, error) {
		if calls.Add(1) == 1 {
			return &app.Dashboard{Summary: app.Summary{Consistency: 40}}, nil
		}
		return nil, boom
	})
	r := app.NewRefresher(builder, 1, "kg", 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []app.Update
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx, func(u app.Update) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, u)
			if len(got) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(got), 3)
	assert.NotNil(t, got[0].Dashboard)
	assert.ErrorIs(t, got[1].Err, boom)
	assert.ErrorIs(t, got[2].Err, boom)
	require.NotNil(t, r.Latest())
	assert.Equal(t, 40, r.Latest().Summary.Consistency)
}

func TestRefresherDropsResultAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	builder := builderFunc(func(context.Context, int64, string) (*app.Dashboard, error) {
		cancel()
		return &app.Dashboard{}, nil
	})
	r := app.NewRefresher(builder, 1, "kg", time.Hour)

	delivered := false
	err := r.Run(ctx, func(app.Update) { delivered = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, delivered)
	assert.Nil(t, r.Latest())
}
