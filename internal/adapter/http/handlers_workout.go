package adapthttp

import (
	"net/http"
	"time"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

func (s *Server) handleWorkoutsRecent(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", app.DefaultListLimit)
	items, err := s.svc.Workout.ListRecent(r.Context(), userFrom(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleWorkoutPut(w http.ResponseWriter, r *http.Request) {
	var body app.WorkoutInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Date == "" {
		body.Date = localDayString(time.Now())
	}
	entry, err := s.svc.Workout.Save(r.Context(), userFrom(r).ID, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (s *Server) handleWorkoutSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": domain.WorkoutSteps()})
}
