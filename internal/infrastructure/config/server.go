package config

import "time"

// ServerConfig holds the JSON API server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// Per-request read/write timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Per-client rate limiting
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Enables admin-only routes (grant, force-complete)
	EnableAdmin bool `mapstructure:"enable_admin"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second per client
	Requests float64 `mapstructure:"requests" validate:"gt=0"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
