package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultCancelRefundFraction refunds half the paid cost on cancel
	DefaultCancelRefundFraction = 0.5

	// DefaultMaxConflictRetries bounds retries after a concurrent modification
	DefaultMaxConflictRetries = 3
)

// setViperDefaults registers defaults for keys whose zero value is meaningful,
// so "0" in a file or env var is not mistaken for "unset"
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.cancel_refund_fraction", DefaultCancelRefundFraction)
}

// DefaultConfig returns a fully defaulted configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Game.CancelRefundFraction = DefaultCancelRefundFraction
	SetDefaults(cfg)
	return cfg
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "empire"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "empire"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "empire.db"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RateLimit.Requests == 0 {
		cfg.Server.RateLimit.Requests = 5
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 20
	}

	// Game defaults
	if cfg.Game.MaxConflictRetries == 0 {
		cfg.Game.MaxConflictRetries = DefaultMaxConflictRetries
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
