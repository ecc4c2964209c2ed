package adapthttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthdash/internal/app"
)

// Metrics collects the Prometheus metrics of the service. It also observes
// the store calls made while building dashboards.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeCalls      *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	streams         prometheus.Gauge
}

// NewMetrics creates a registry with the HTTP and store metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdash_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthdash_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	storeCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdash_store_calls_total",
		Help: "Store reads made for dashboard snapshots by operation and outcome.",
	}, []string{"op", "outcome"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthdash_store_call_duration_seconds",
		Help:    "Store read duration by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "healthdash_dashboard_streams",
		Help: "Open live dashboard streams.",
	})
	registry.MustRegister(requests, duration, storeCalls, storeDuration, streams)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		storeCalls:      storeCalls,
		storeDuration:   storeDuration,
		streams:         streams,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request counts and durations per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveStoreCall implements app.StoreObserver.
func (m *Metrics) ObserveStoreCall(op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, app.ErrTimeout):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	m.storeCalls.WithLabelValues(op, outcome).Inc()
	m.storeDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) streamOpened() {
	if m != nil {
		m.streams.Inc()
	}
}

func (m *Metrics) streamClosed() {
	if m != nil {
		m.streams.Dec()
	}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
