// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration for the application.
type Config struct {
	Addr   string `envconfig:"ADDR" default:":8080"`
	WebDir string `envconfig:"WEB_DIR" default:"web"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/healthdash.db"`

	RedisAddr   string        `envconfig:"REDIS_ADDR"`
	SnapshotTTL time.Duration `envconfig:"SNAPSHOT_TTL" default:"15s"`

	StoreTimeout    time.Duration `envconfig:"STORE_TIMEOUT" default:"12s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"15s"`
	SessionSweep    time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1h"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`

	OIDCIssuer       string `envconfig:"OIDC_ISSUER"`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL"`

	AuthDisabled bool `envconfig:"AUTH_DISABLED" default:"false"`
	// TrustForwardAuth accepts the Remote-User header. Enable it only behind
	// a proxy that strips the header from client requests.
	TrustForwardAuth bool   `envconfig:"TRUST_FORWARD_AUTH" default:"false"`
	TZName           string `envconfig:"TZ_NAME" default:"Local"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
	}
	for name, d := range map[string]time.Duration{
		"SNAPSHOT_TTL":           c.SnapshotTTL,
		"STORE_TIMEOUT":          c.StoreTimeout,
		"REFRESH_INTERVAL":       c.RefreshInterval,
		"SESSION_SWEEP_INTERVAL": c.SessionSweep,
		"SHUTDOWN_TIMEOUT":       c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if (c.OIDCIssuer == "") != (c.OIDCClientID == "") {
		errs = append(errs, errors.New("OIDC_ISSUER and OIDC_CLIENT_ID must be set together"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TZ_NAME: %w", err))
	}
	return errors.Join(errs...)
}

// OIDCEnabled reports whether single sign-on is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// Location resolves TZ_NAME. "Local" keeps the process time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TZName == "" || c.TZName == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TZName)
}
