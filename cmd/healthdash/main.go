package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"healthdash/internal/adapter/cache"
	adapthttp "healthdash/internal/adapter/http"
	"healthdash/internal/adapter/memory"
	"healthdash/internal/adapter/postgres"
	"healthdash/internal/adapter/sqlite"
	"healthdash/internal/app"
	"healthdash/internal/config"
	"healthdash/internal/domain"
	"healthdash/internal/logging"
)

// store is everything a backend provides besides sessions.
type store interface {
	domain.UserRepository
	domain.ProfileRepository
	domain.WeightLogRepository
	domain.WorkoutLogRepository
	domain.FoodLogRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logCloser := logging.Setup(logging.Params{
		Level: cfg.LogLevel,
		JSON:  cfg.LogFormat == "json",
		File:  cfg.LogFile,
	})
	defer func() { _ = logCloser.Close() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("time zone: %v", err)
	}
	time.Local = loc

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("healthdash stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, sessions, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := adapthttp.NewMetrics()
	dashOpts := app.DashboardOptions{
		StoreTimeout: cfg.StoreTimeout,
		Observer:     metrics,
	}
	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		dashOpts.Cache = cache.New(client, cfg.SnapshotTTL)
		log.WithField("addr", cfg.RedisAddr).Info("dashboard snapshot cache enabled")
	}

	dashSvc := app.NewDashboardService(db, db, db, db, dashOpts)
	authSvc := app.NewAuthService(db, sessions)
	svc := adapthttp.Services{
		Auth:      authSvc,
		Profile:   app.NewProfileService(db, dashSvc),
		Weight:    app.NewWeightService(db, db, dashSvc),
		Workout:   app.NewWorkoutService(db, dashSvc),
		Food:      app.NewFoodService(db, dashSvc),
		Dashboard: dashSvc,
	}

	var oidcCfg adapthttp.OIDCConfig
	if cfg.OIDCEnabled() {
		oidcCfg, err = adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			return err
		}
		log.WithField("issuer", cfg.OIDCIssuer).Info("sso enabled")
	}

	server := adapthttp.New(svc, adapthttp.Options{
		WebDir:           cfg.WebDir,
		OIDC:             oidcCfg,
		Metrics:          metrics,
		RefreshInterval:  cfg.RefreshInterval,
		TrustForwardAuth: cfg.TrustForwardAuth,
	})
	if cfg.AuthDisabled {
		user, err := authSvc.ValidateForwardAuth(ctx, "local")
		if err != nil {
			return fmt.Errorf("provision local user: %w", err)
		}
		server = server.WithoutAuthAs(user)
		log.Warn("authentication disabled, serving every request as the local user")
	}

	go authSvc.SweepExpired(ctx, cfg.SessionSweep)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.WithFields(log.Fields{"addr": ln.Addr().String(), "store": cfg.StoreDriver}).Info("listening")
	return serve(ctx, server.Handler(), ln, cfg.ShutdownTimeout)
}

// serve answers requests on ln until ctx ends, then shuts down gracefully.
// Request contexts derive from ctx, so long-lived streams end with it.
func serve(ctx context.Context, handler http.Handler, ln net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config) (store, domain.SessionRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db, postgres.NewSessionRepo(db), func() { _ = db.Close() }, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		return db, sqlite.NewSessionRepo(db), func() { _ = db.Close() }, nil
	default:
		db := memory.New()
		log.Warn("using the in-memory store, data is lost on restart")
		return db, db.NewSessionRepo(), func() {}, nil
	}
}
