package domain

// Step groups of the workout routine.
const (
	StepGroupWFH    = "WFH"
	StepGroupNonWFH = "Non-WFH"
)

// WorkoutStep is one entry of the fixed routine catalog.
type WorkoutStep struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
}

var workoutSteps = []WorkoutStep{
	{ID: "m1", Label: "WFH Micro 1 - Mobility + Breath", Group: StepGroupWFH},
	{ID: "m2", Label: "WFH Micro 2 - Pelvic Control + Core", Group: StepGroupWFH},
	{ID: "m3", Label: "WFH Micro 3 - Hip Flexor + Quad", Group: StepGroupWFH},
	{ID: "m4", Label: "WFH Micro 4 - Upper Push", Group: StepGroupWFH},
	{ID: "m5", Label: "WFH Micro 5 - Lower Strength", Group: StepGroupWFH},
	{ID: "m6", Label: "WFH Micro 6 - Core + Posture", Group: StepGroupWFH},
	{ID: "m7", Label: "WFH Micro 7 - Fascia Reset", Group: StepGroupWFH},
	{ID: "m8", Label: "WFH Micro 8 - Upper Pull Alternatives", Group: StepGroupWFH},
	{ID: "m9", Label: "WFH Micro 9 - Glutes + Lower Core", Group: StepGroupWFH},
	{ID: "m10", Label: "WFH Micro 10 - Night Downshift", Group: StepGroupWFH},
	{ID: "ia", Label: "Non-WFH Intensive A", Group: StepGroupNonWFH},
	{ID: "ib", Label: "Non-WFH Intensive B", Group: StepGroupNonWFH},
}

// WorkoutSteps returns a copy of the routine catalog in display order.
func WorkoutSteps() []WorkoutStep {
	out := make([]WorkoutStep, len(workoutSteps))
	copy(out, workoutSteps)
	return out
}

// LookupStep finds a catalog step by id.
func LookupStep(id string) (WorkoutStep, bool) {
	for _, s := range workoutSteps {
		if s.ID == id {
			return s, true
		}
	}
	return WorkoutStep{}, false
}

// InferSessionType derives the session type from the groups of the given
// steps. Unknown ids are ignored; no recognised step yields mixed.
func InferSessionType(stepIDs []string) SessionType {
	groups := make(map[string]struct{}, 2)
	for _, id := range stepIDs {
		if s, ok := LookupStep(id); ok {
			groups[s.Group] = struct{}{}
		}
	}
	if len(groups) > 1 {
		return SessionMixed
	}
	if _, ok := groups[StepGroupWFH]; ok {
		return SessionWFH
	}
	if _, ok := groups[StepGroupNonWFH]; ok {
		return SessionNonWFH
	}
	return SessionMixed
}
