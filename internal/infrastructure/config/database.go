package config

import "time"

// DatabaseConfig describes the village store. Postgres is the production
// backend; sqlite serves local play and tests.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL wins over the discrete postgres fields; DATABASE_URL sets it
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// sqlite file, or ":memory:"
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`

	// Migrate players, villages, buildings and research tables on connect
	AutoMigrate bool `mapstructure:"auto_migrate"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig bounds the database/sql pool behind gorm
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
