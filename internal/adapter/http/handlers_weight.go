package adapthttp

import (
	"net/http"
	"time"

	"healthdash/internal/app"
)

func (s *Server) handleWeightRecent(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", app.DefaultListLimit)
	items, err := s.svc.Weight.ListRecent(r.Context(), userFrom(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleWeightPut records the weight of a day, today unless a date is given.
func (s *Server) handleWeightPut(w http.ResponseWriter, r *http.Request) {
	var body app.WeightInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Date == "" {
		body.Date = localDayString(time.Now())
	}
	entry, err := s.svc.Weight.Record(r.Context(), userFrom(r).ID, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}
