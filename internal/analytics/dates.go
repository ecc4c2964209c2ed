// Package analytics derives dashboard metrics from snapshots of health logs.
//
// Every function here is pure: inputs are never mutated, nothing is cached
// between calls, and "today" is always passed in by the caller.
package analytics

import (
	"time"

	"healthdash/internal/domain"
)

// LastNDates returns the last days calendar dates ending with now's date,
// oldest first. Dates are taken in now's location.
func LastNDates(days int, now time.Time) []string {
	if days <= 0 {
		return []string{}
	}
	labels := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		labels = append(labels, now.AddDate(0, 0, -i).Format(domain.DateLayout))
	}
	return labels
}

// DaysBetween returns the calendar-day difference to - from. ok is false when
// either date does not parse.
func DaysBetween(from, to string) (days int, ok bool) {
	a, err := time.Parse(domain.DateLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(domain.DateLayout, to)
	if err != nil {
		return 0, false
	}
	// Both parse as UTC midnight. Unix seconds avoid the ~292 year
	// time.Duration ceiling.
	return int((b.Unix() - a.Unix()) / 86400), true
}

// dateOf formats the calendar date of t.
func dateOf(t time.Time) string {
	return t.Format(domain.DateLayout)
}
