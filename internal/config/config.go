// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's error helpers.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ComputeURL is the base URL of the analytics backend that runs the
	// embedding and cluster analysis. Empty selects the in-memory engine.
	ComputeURL string `koanf:"compute_url"`

	// ComputeTimeoutMS bounds each remote compute request.
	ComputeTimeoutMS int `koanf:"compute_timeout_ms"`

	// GridXBins and GridYBins set the court grid resolution.
	GridXBins int `koanf:"grid_x_bins"`
	GridYBins int `koanf:"grid_y_bins"`

	// TimeBins is the number of game-time segments (quarters by default).
	TimeBins int `koanf:"time_bins"`

	// DominanceEpsilon is the dead-zone threshold for dominance coloring.
	DominanceEpsilon float64 `koanf:"dominance_epsilon"`

	// MaxDiameter is the mark diameter assigned to the per-view maximum
	// under dynamic-max size scaling.
	MaxDiameter float64 `koanf:"max_diameter"`

	// SizeMode picks the size normalization: "dynamic" or "fixed".
	SizeMode string `koanf:"size_mode"`

	// FixedMax is the calibration constant for fixed-max size scaling.
	FixedMax float64 `koanf:"fixed_max"`

	// SizeScale multiplies the cell diagonal under fixed-max scaling.
	SizeScale float64 `koanf:"size_scale"`

	// NoticeCap bounds the number of retained transient notices.
	NoticeCap int `koanf:"notice_cap"`
}

// New creates a Config with defaults. The grid and time defaults match the
// NBA half-court binning the analytics backend uses: 17 x-bins over
// [-250, 250], 16 y-bins over [-47.5, 422.5], one time bin per quarter.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		ComputeURL:       "",
		ComputeTimeoutMS: 30_000,
		GridXBins:        17,
		GridYBins:        16,
		TimeBins:         4,
		DominanceEpsilon: 1e-4,
		MaxDiameter:      18.0,
		SizeMode:         "dynamic",
		FixedMax:         40.0,
		SizeScale:        0.9,
		NoticeCap:        32,
	}
}
