package analytics

import (
	"math"
	"time"

	"healthdash/internal/domain"
)

// DefaultConsistencySpan is the trailing window, in days, of the consistency
// score.
const DefaultConsistencySpan = 30

// ConsistencyScore returns the percentage, rounded to an integer, of the last
// spanDays calendar dates (ending today) that have a workout log with at least
// one completed step. A non-positive span falls back to
// DefaultConsistencySpan.
func ConsistencyScore(logs []domain.WorkoutLog, spanDays int, now time.Time) int {
	if spanDays <= 0 {
		spanDays = DefaultConsistencySpan
	}
	activeDates := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		if l.Active() {
			activeDates[l.Date] = struct{}{}
		}
	}

	active := 0
	for _, d := range LastNDates(spanDays, now) {
		if _, ok := activeDates[d]; ok {
			active++
		}
	}
	return int(math.Round(float64(active) / float64(spanDays) * 100))
}

// ActiveWorkoutDays counts logs with at least one completed step.
func ActiveWorkoutDays(logs []domain.WorkoutLog) int {
	n := 0
	for _, l := range logs {
		if l.Active() {
			n++
		}
	}
	return n
}
