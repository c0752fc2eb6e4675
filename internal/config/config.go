package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the dashboard service.
// Environment variables are parsed from the HOMEBOARD_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store driver: postgres or sqlite ("auto" derives from what is set).
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"homeboard.db"`

	// Content repository page size.
	PerPage int `envconfig:"PER_PAGE" default:"10"`

	// Auth. APIKeys maps API keys to actor IDs (key1:user1,key2:user2).
	// Empty map plus DevMode falls back to the local dev key.
	DevMode    bool              `envconfig:"DEV_MODE" default:"false"`
	APIKeys    map[string]string `envconfig:"API_KEYS"`
	Capability string            `envconfig:"CAPABILITY" default:"use_dashboard"`

	// Mutation token signing.
	TokenSecret string        `envconfig:"TOKEN_SECRET" default:""`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"12h"`

	// Feed preview fetch timeout.
	FeedTimeout time.Duration `envconfig:"FEED_TIMEOUT" default:"10s"`
}

// ResolveDefaults derives DBDriver when set to "auto" and validates the
// resulting configuration.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("HOMEBOARD_POSTGRES_DSN required for postgres driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("HOMEBOARD_SQLITE_PATH required for sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.PerPage <= 0 {
		return fmt.Errorf("PER_PAGE must be positive, got %d", c.PerPage)
	}

	if !c.DevMode {
		if len(c.APIKeys) == 0 {
			return fmt.Errorf("HOMEBOARD_API_KEYS required outside dev mode")
		}
		if len(c.TokenSecret) < 32 {
			return fmt.Errorf("HOMEBOARD_TOKEN_SECRET must be at least 32 bytes")
		}
	}
	if c.TokenSecret == "" {
		// Dev-only fallback; tokens do not survive restarts anyway.
		c.TokenSecret = "homeboard-local-dev-secret-0123456789"
	}
	return nil
}

// IsDevMode returns true when development mode is enabled.
func (c *Config) IsDevMode() bool {
	return c.DevMode || c.Environment == EnvDevelopment
}

// New creates a new Config by parsing environment variables.
// Example: HOMEBOARD_HTTP_PORT, HOMEBOARD_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("HOMEBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Int("per_page", cfg.PerPage).
		Bool("dev_mode", cfg.DevMode).
		Int("api_keys", len(cfg.APIKeys)).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,
		DBDriver:    "sqlite",
		SQLitePath:  ":memory:",
		PerPage:     10,
		DevMode:     true,
		Capability:  "use_dashboard",
		TokenSecret: "homeboard-test-secret-0123456789ab",
		TokenTTL:    time.Hour,
		FeedTimeout: time.Second,
	}
	return cfg
}
