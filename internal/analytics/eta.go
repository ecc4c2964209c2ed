package analytics

import (
	"fmt"
	"math"
	"time"

	"healthdash/internal/domain"
)

// MaxETADays is the longest projection reported before the trend is treated as
// too weak to be meaningful.
const MaxETADays = 3650

// ETAStatus identifies which outcome EstimateETA reached.
type ETAStatus string

const (
	ETAInsufficientData  ETAStatus = "insufficient_data"
	ETAGoalReached       ETAStatus = "goal_reached"
	ETAFlatTrend         ETAStatus = "flat_trend"
	ETATrendingAway      ETAStatus = "trending_away"
	ETAInsufficientTrend ETAStatus = "insufficient_trend"
	ETAProjected         ETAStatus = "projected"
)

var etaMessages = map[ETAStatus]string{
	ETAInsufficientData:  "Need more weight logs",
	ETAGoalReached:       "Goal reached",
	ETAFlatTrend:         "Flat trend",
	ETATrendingAway:      "Trend moving away",
	ETAInsufficientTrend: "Insufficient trend quality",
}

// ETA is the goal projection. Message is always a display-ready string; Days
// and Date are only set when Status is ETAProjected.
type ETA struct {
	Status  ETAStatus `json:"status"`
	Days    int       `json:"days,omitempty"`
	Date    string    `json:"date,omitempty"`
	Message string    `json:"message"`
}

func (e ETA) String() string { return e.Message }

func etaOf(status ETAStatus) ETA {
	return ETA{Status: status, Message: etaMessages[status]}
}

// EstimateETA linearly extrapolates the recent weight trend to the profile's
// goal weight. It never fails: every data-quality problem maps to a status.
func EstimateETA(profile *domain.Profile, logs []domain.WeightLog, now time.Time) ETA {
	goal, ok := profile.GoalWeight()
	if !ok || len(logs) < 2 {
		return etaOf(ETAInsufficientData)
	}

	recent := RecentWeightLogs(logs, TrendWindow)
	latest := recent[0]
	distance := goal - latest.WeightKg
	if distance == 0 {
		return etaOf(ETAGoalReached)
	}

	slope := TrendSlope(recent)
	if slope == 0 {
		return etaOf(ETAFlatTrend)
	}

	towardGoal := slope < 0
	if distance > 0 {
		towardGoal = slope > 0
	}
	if !towardGoal {
		return etaOf(ETATrendingAway)
	}

	raw := math.Ceil(math.Abs(distance / slope))
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw > MaxETADays {
		return etaOf(ETAInsufficientTrend)
	}
	days := int(raw)
	date := dateOf(now.AddDate(0, 0, days))
	return ETA{
		Status:  ETAProjected,
		Days:    days,
		Date:    date,
		Message: fmt.Sprintf("%d days (%s)", days, date),
	}
}
