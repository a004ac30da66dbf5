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
//  2. file (YAML) if MELA_CONFIG is set
//  3. env (prefix MELA_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("MELA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MELA_ADDR, MELA_LOCK_TIMEOUT_MS, ...
	// Map env keys like MELA_LOCK_TIMEOUT_MS -> lock_timeout_ms (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("MELA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "mela_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.RegistrationsPath == "" {
		return nil, fmt.Errorf("%w: registrations_path must not be empty", ErrInvalidConfig)
	}
	if cfg.LockTimeoutMS <= 0 {
		return nil, fmt.Errorf("%w: lock_timeout_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
