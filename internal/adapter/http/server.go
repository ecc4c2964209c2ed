package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"healthdash/internal/app"
	"healthdash/internal/domain"
)

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Auth      *app.AuthService
	Profile   *app.ProfileService
	Weight    *app.WeightService
	Workout   *app.WorkoutService
	Food      *app.FoodService
	Dashboard *app.DashboardService
}

// Options configures a Server. Zero values pick defaults.
type Options struct {
	WebDir          string
	OIDC            OIDCConfig
	Metrics         *Metrics
	RefreshInterval time.Duration
	// LoginRateLimit caps login attempts per client IP and minute.
	LoginRateLimit int
	// TrustForwardAuth authenticates requests by their Remote-User header.
	TrustForwardAuth bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc             Services
	webDir          string
	oidcConfig      OIDCConfig
	metrics         *Metrics
	refreshInterval time.Duration
	loginRateLimit  int
	trustForward    bool

	disableAuth bool
	localUser   *domain.User
}

// New creates a Server wired to the given application services.
func New(svc Services, opts Options) *Server {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = app.DefaultRefreshInterval
	}
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 10
	}
	return &Server{
		svc:             svc,
		webDir:          opts.WebDir,
		oidcConfig:      opts.OIDC,
		metrics:         opts.Metrics,
		refreshInterval: opts.RefreshInterval,
		loginRateLimit:  opts.LoginRateLimit,
		trustForward:    opts.TrustForwardAuth,
	}
}

// WithoutAuth disables authentication and serves every request as user 1.
func (s *Server) WithoutAuth() *Server {
	return s.WithoutAuthAs(&domain.User{ID: 1, Username: "local"})
}

// WithoutAuthAs disables authentication and serves every request as user.
func (s *Server) WithoutAuthAs(user *domain.User) *Server {
	s.disableAuth = true
	s.localUser = user
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(withNoCache)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		api.Get("/config", s.handleConfig)

		api.Route("/auth", func(auth chi.Router) {
			auth.With(httprate.Limit(s.loginRateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP))).Post("/login", s.handleLogin)
			auth.Post("/logout", s.handleLogout)
			auth.Post("/setup", s.handleSetupUser)
			auth.Get("/sso/login", s.handleSSOLogin)
			auth.Get("/sso/callback", s.handleSSOCallback)
		})

		api.Group(func(priv chi.Router) {
			priv.Use(s.authMiddleware)

			priv.Get("/me", s.handleMe)

			priv.Get("/profile", s.handleProfileGet)
			priv.Put("/profile", s.handleProfilePut)

			priv.Get("/weight", s.handleWeightRecent)
			priv.Put("/weight", s.handleWeightPut)

			priv.Get("/workouts", s.handleWorkoutsRecent)
			priv.Put("/workouts", s.handleWorkoutPut)
			priv.Get("/workouts/steps", s.handleWorkoutSteps)

			priv.Get("/food", s.handleFoodRecent)
			priv.Post("/food", s.handleFoodPost)

			priv.Get("/dashboard", s.handleDashboard)
			priv.Get("/dashboard/stream", s.handleDashboardStream)
		})
	})

	r.Handle("/*", spaFromDisk(s.webDir))
	return r
}
