package config

// GameConfig holds the tunable game rules
type GameConfig struct {
	// Path to a YAML catalog; empty uses the embedded default catalog
	CatalogPath string `mapstructure:"catalog_path"`

	// Fraction of the paid cost credited back when an upgrade or research is cancelled
	CancelRefundFraction float64 `mapstructure:"cancel_refund_fraction" validate:"min=0,max=1"`

	// How often a village operation is re-run after a concurrent modification
	MaxConflictRetries int `mapstructure:"max_conflict_retries" validate:"min=1,max=20"`
}
