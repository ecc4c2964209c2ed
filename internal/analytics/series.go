package analytics

import (
	"time"

	"healthdash/internal/domain"
)

// WorkoutSeries is the completed-step count per date label.
type WorkoutSeries struct {
	Labels []string `json:"labels"`
	Steps  []int    `json:"steps"`
}

// FoodSeries is the per-date calorie level mix.
type FoodSeries struct {
	Labels []string `json:"labels"`
	Low    []int    `json:"low"`
	Medium []int    `json:"medium"`
	High   []int    `json:"high"`
}

// WeightSeries pairs each logged date with its weight. Goal repeats the goal
// weight once per point, or holds nils when no goal is set.
type WeightSeries struct {
	Labels []string   `json:"labels"`
	Values []float64  `json:"values"`
	Goal   []*float64 `json:"goal"`
}

// BuildWorkoutSeries projects workout logs onto the last days dates.
// Dates without a log get 0.
func BuildWorkoutSeries(logs []domain.WorkoutLog, days int, now time.Time) WorkoutSeries {
	labels := LastNDates(days, now)
	byDate := make(map[string]domain.WorkoutLog, len(logs))
	for _, l := range logs {
		byDate[l.Date] = l
	}
	steps := make([]int, len(labels))
	for i, d := range labels {
		steps[i] = len(byDate[d].CompletedSteps)
	}
	return WorkoutSeries{Labels: labels, Steps: steps}
}

// BuildFoodSeries groups food logs by the date of EatenAt and projects the
// per-level counts onto the last days dates.
func BuildFoodSeries(logs []domain.FoodLog, days int, now time.Time) FoodSeries {
	labels := LastNDates(days, now)
	grouped := make(map[string]*MealMix)
	for _, l := range logs {
		day := l.Day()
		mix, ok := grouped[day]
		if !ok {
			mix = &MealMix{}
			grouped[day] = mix
		}
		mix.Add(l.CalorieLevel)
	}

	s := FoodSeries{
		Labels: labels,
		Low:    make([]int, len(labels)),
		Medium: make([]int, len(labels)),
		High:   make([]int, len(labels)),
	}
	for i, d := range labels {
		if mix, ok := grouped[d]; ok {
			s.Low[i], s.Medium[i], s.High[i] = mix.Low, mix.Medium, mix.High
		}
	}
	return s
}

// BuildWeightSeries orders weight logs by date ascending and attaches a
// constant goal line. goalKg <= 0 means no goal.
func BuildWeightSeries(logs []domain.WeightLog, goalKg float64) WeightSeries {
	sorted := sortedByDateAsc(logs)
	s := WeightSeries{
		Labels: make([]string, len(sorted)),
		Values: make([]float64, len(sorted)),
		Goal:   make([]*float64, len(sorted)),
	}
	for i, l := range sorted {
		s.Labels[i] = l.Date
		s.Values[i] = l.WeightKg
		if goalKg > 0 {
			g := goalKg
			s.Goal[i] = &g
		}
	}
	return s
}

// InUnit returns a copy of s with values and goal converted from kilograms.
func (s WeightSeries) InUnit(unit string) WeightSeries {
	out := WeightSeries{
		Labels: s.Labels,
		Values: make([]float64, len(s.Values)),
		Goal:   make([]*float64, len(s.Goal)),
	}
	for i, v := range s.Values {
		out.Values[i] = domain.ConvertWeight(v, domain.UnitKg, unit)
	}
	for i, g := range s.Goal {
		if g != nil {
			v := domain.ConvertWeight(*g, domain.UnitKg, unit)
			out.Goal[i] = &v
		}
	}
	return out
}
