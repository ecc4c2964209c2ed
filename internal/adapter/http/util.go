package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeServiceError maps an application error onto a status code and a
// message safe to show the user. Unexpected errors are logged, not echoed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := describeError(err)
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	var ve *app.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, status, map[string]any{"error": msg, "fields": ve.Fields})
		return
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func describeError(err error) (int, string) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, app.ErrTimeout):
		return http.StatusGatewayTimeout, "the data store took too long to answer, try again"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "the data store is temporarily unavailable, check your connection and retry"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "the data store refused the request, check its access rules"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusServiceUnavailable, "the data store is out of capacity, check its usage limits"
	case app.IsAuthError(err):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "something went wrong, try again"
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func localDayString(t time.Time) string {
	return t.In(time.Local).Format(domain.DateLayout)
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
