package analytics

import (
	"cmp"
	"slices"

	"healthdash/internal/domain"
)

// TrendWindow is how many of the most recent weight logs feed the trend slope.
const TrendWindow = 30

// TrendSlope returns the two-point slope in kg/day between the earliest and the
// latest log of the window. It is not a regression: callers choose the window
// by truncating logs before calling. Fewer than two logs, or an unparsable
// date, yield 0.
func TrendSlope(logs []domain.WeightLog) float64 {
	if len(logs) < 2 {
		return 0
	}
	sorted := sortedByDateAsc(logs)
	first, last := sorted[0], sorted[len(sorted)-1]

	days, ok := DaysBetween(first.Date, last.Date)
	if !ok {
		return 0
	}
	return (last.WeightKg - first.WeightKg) / float64(max(1, days))
}

// RecentWeightLogs returns up to n logs with the latest dates, newest first.
// Logs sharing a date keep their input order.
func RecentWeightLogs(logs []domain.WeightLog, n int) []domain.WeightLog {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b domain.WeightLog) int {
		return cmp.Compare(b.Date, a.Date)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func sortedByDateAsc(logs []domain.WeightLog) []domain.WeightLog {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b domain.WeightLog) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return sorted
}
