package adapthttp

import (
	"net/http"

	"healthdash/internal/app"
)

func (s *Server) handleFoodRecent(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", app.DefaultListLimit)
	items, err := s.svc.Food.ListRecent(r.Context(), userFrom(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleFoodPost(w http.ResponseWriter, r *http.Request) {
	var body app.FoodInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.svc.Food.Add(r.Context(), userFrom(r).ID, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}
