package analytics

import "healthdash/internal/domain"

// MealMix counts food logs per calorie level.
type MealMix struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Add counts one food log of the given raw level. Unrecognised levels are
// dropped.
func (m *MealMix) Add(level domain.CalorieLevel) {
	normalized, ok := domain.NormalizeCalorieLevel(string(level))
	if !ok {
		return
	}
	switch normalized {
	case domain.CalorieLow:
		m.Low++
	case domain.CalorieMedium:
		m.Medium++
	case domain.CalorieHigh:
		m.High++
	}
}

// Total is the number of classified logs.
func (m MealMix) Total() int { return m.Low + m.Medium + m.High }

// MealMixOf aggregates food logs by calorie level. Rows stored before levels
// were normalised are matched case-insensitively; anything else is ignored.
func MealMixOf(logs []domain.FoodLog) MealMix {
	var mix MealMix
	for _, l := range logs {
		mix.Add(l.CalorieLevel)
	}
	return mix
}
