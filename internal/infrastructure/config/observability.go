package config

// LoggingConfig selects where the charmbracelet logger writes and how.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// json and logfmt are meant for collectors, text for terminals
	Format string `mapstructure:"format" validate:"required,oneof=json logfmt text"`

	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Report file:line of the log call
	IncludeCaller bool `mapstructure:"include_caller"`
}

// MetricsConfig controls the Prometheus endpoint. When disabled no registry
// is created and every Record* call is a no-op.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}
