package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if COURTLENS_CONFIG is set
//  3. env (prefix COURTLENS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("COURTLENS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like COURTLENS_GRID_X_BINS map to grid_x_bins; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("COURTLENS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "courtlens_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.GridXBins <= 0 || c.GridYBins <= 0:
		return fmt.Errorf("%w: grid bins must be positive", ErrInvalidConfig)
	case c.TimeBins <= 0:
		return fmt.Errorf("%w: time_bins must be positive", ErrInvalidConfig)
	case c.DominanceEpsilon < 0:
		return fmt.Errorf("%w: dominance_epsilon must not be negative", ErrInvalidConfig)
	case c.SizeMode != "dynamic" && c.SizeMode != "fixed":
		return fmt.Errorf("%w: size_mode must be dynamic or fixed", ErrInvalidConfig)
	case c.MaxDiameter <= 0 || c.FixedMax <= 0 || c.SizeScale <= 0:
		return fmt.Errorf("%w: size scaling constants must be positive", ErrInvalidConfig)
	}
	return nil
}
