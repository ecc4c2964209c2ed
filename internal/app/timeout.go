package app

import (
	"context"
	"errors"
	"time"
)

// DefaultStoreTimeout bounds how long a single store call may take before the
// caller gives up on it.
const DefaultStoreTimeout = 12 * time.Second

// ErrTimeout is returned when a store call did not answer within its bound.
var ErrTimeout = errors.New("store request timed out")

// CallWithTimeout runs fn and returns its result, or ErrTimeout if fn has not
// returned within d. fn keeps running after a timeout and its late result is
// discarded. Cancellation of ctx is reported as ctx.Err().
func CallWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	type result struct {
		val T
		err error
	}
	// Buffered so the goroutine can always deliver and exit.
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
