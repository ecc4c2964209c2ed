package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Build(r.Context(), userFrom(r).ID, r.URL.Query().Get("unit"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDashboardStream pushes a freshly built dashboard as a server-sent
// event on connect and then every refresh interval until the client leaves.
// Failed refreshes are sent as "error" events and the stream stays open.
func (s *Server) handleDashboardStream(w http.ResponseWriter, r *http.Request) {
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = domain.UnitKg
	}
	if !domain.ValidUnit(unit) {
		writeError(w, http.StatusBadRequest, errors.New(`unit must be "kg" or "lb"`))
		return
	}
	user := userFrom(r)
	logger := log.WithField("user_id", user.ID)

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.WithError(err).Error("dashboard stream cannot flush")
		return
	}

	s.metrics.streamOpened()
	defer s.metrics.streamClosed()

	refresher := app.NewRefresher(s.svc.Dashboard, user.ID, unit, s.refreshInterval)
	_ = refresher.Run(r.Context(), func(u app.Update) {
		var err error
		if u.Err != nil {
			_, msg := describeError(u.Err)
			logger.WithError(u.Err).Warn("dashboard refresh failed")
			err = writeEvent(w, "error", map[string]string{"error": msg})
		} else {
			err = writeEvent(w, "dashboard", u.Dashboard)
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			logger.WithError(err).Debug("dashboard stream write failed")
		}
	})
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
