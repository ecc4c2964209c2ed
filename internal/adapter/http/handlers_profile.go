package adapthttp

import (
	"net/http"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

func profileResponse(p *domain.Profile) map[string]any {
	return map[string]any{"profile": p, "needsSetup": app.NeedsSetup(p)}
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile.Get(r.Context(), userFrom(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(p))
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	var body app.ProfileInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := s.svc.Profile.Save(r.Context(), userFrom(r).ID, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(p))
}
