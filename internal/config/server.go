package config

import (
	"fmt"
	"time"

	"github.com/hallgrim/dayplan/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Tasks           TaskConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"DAYPLAN_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"DAYPLAN_HTTP_HOST"`
	Port              string        `env:"DAYPLAN_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"DAYPLAN_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `env:"DAYPLAN_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `env:"DAYPLAN_HTTP_IDLE_TIMEOUT" default:"60s"`
	ReadHeaderTimeout time.Duration `env:"DAYPLAN_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxBodyBytes      int64         `env:"DAYPLAN_HTTP_MAX_BODY_BYTES" default:"1048576"`
}

// Addr returns the host:port the HTTP server listens on.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// TaskConfig holds task service configuration.
type TaskConfig struct {
	// GenerationHorizonDays bounds how far ahead recurring task
	// instances are materialized.
	GenerationHorizonDays int `env:"DAYPLAN_GENERATION_HORIZON_DAYS" default:"90"`

	// PurgeSchedule is a cron expression for the soft-delete purge job.
	PurgeSchedule string `env:"DAYPLAN_PURGE_SCHEDULE" default:"@hourly"`

	// PurgeRetention is how long soft-deleted items are kept before
	// the purge job removes them permanently.
	PurgeRetention time.Duration `env:"DAYPLAN_PURGE_RETENTION" default:"720h"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
