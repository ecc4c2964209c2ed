package app

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is used when a Refresher is given no interval.
const DefaultRefreshInterval = 15 * time.Second

// DashboardBuilder builds the dashboard of a user.
type DashboardBuilder interface {
	Build(ctx context.Context, userID int64, unit string) (*Dashboard, error)
}

// Update is one refresh outcome. Exactly one of Dashboard and Err is set.
type Update struct {
	Dashboard *Dashboard
	Err       error
}

// Refresher keeps one live dashboard view up to date. Each view owns its own
// Refresher; nothing is shared between views.
type Refresher struct {
	builder  DashboardBuilder
	userID   int64
	unit     string
	interval time.Duration

	mu     sync.Mutex
	latest *Dashboard
}

// NewRefresher creates a Refresher that rebuilds every interval.
func NewRefresher(builder DashboardBuilder, userID int64, unit string, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{builder: builder, userID: userID, unit: unit, interval: interval}
}

// Run builds immediately and then on every tick until ctx is done, passing
// each outcome to onUpdate. A failed build is reported and the loop goes on.
// Outcomes that complete after ctx is done are dropped. Run returns ctx.Err().
func (r *Refresher) Run(ctx context.Context, onUpdate func(Update)) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		d, err := r.builder.Build(ctx, r.userID, r.unit)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			r.mu.Lock()
			r.latest = d
			r.mu.Unlock()
			onUpdate(Update{Dashboard: d})
		} else {
			onUpdate(Update{Err: err})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Latest returns the last successfully built dashboard, or nil.
func (r *Refresher) Latest() *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}
