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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if RINGCAST_CONFIG is set
//  3. env (prefix RINGCAST_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RINGCAST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: RINGCAST_UDP_ADDR, RINGCAST_METRICS_ADDR, ...
	// Map env keys like RINGCAST_UDP_ADDR -> udp_addr (flat keys).
	// A double underscore descends into nested sections, so
	// RINGCAST_REPLAY__MAX_WAIT_MS -> replay.max_wait_ms.
	envProvider := env.Provider("RINGCAST_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ringcast_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UDPAddr == "" {
		return fmt.Errorf("%w: udp_addr must not be empty", ErrInvalidConfig)
	}
	if c.MetricsAddr == "" {
		return fmt.Errorf("%w: metrics_addr must not be empty", ErrInvalidConfig)
	}
	if c.Correlation.GapThresholdMinutes <= 0 {
		return fmt.Errorf("%w: correlation.gap_threshold_minutes must be positive", ErrInvalidConfig)
	}
	for _, conn := range c.Connections {
		if conn.Name == "" || conn.URL == "" {
			return fmt.Errorf("%w: connections need a name and url", ErrInvalidConfig)
		}
		switch conn.Role {
		case "", "recording", "streaming":
		default:
			return fmt.Errorf("%w: unknown connection role %q", ErrInvalidConfig, conn.Role)
		}
	}
	return nil
}
