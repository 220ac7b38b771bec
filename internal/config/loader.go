package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/boutstats/internal/domain/analytics"
)

// Environment variable names and prefix.
const (
	envPrefix  = "BOUTSTATS_"
	envConfig  = "BOUTSTATS_CONFIG"
	envDotFile = "BOUTSTATS_ENV_FILE"
	dotEnvFile = ".env"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New())
//  2. a .env file (BOUTSTATS_ENV_FILE, or ./.env when present); it never
//     overrides variables already set in the process environment
//  3. a YAML file if BOUTSTATS_CONFIG is set
//  4. env vars with prefix BOUTSTATS_
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// BOUTSTATS_QUEUE_SIZE -> queue_size; flat keys match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if path := os.Getenv(envDotFile); path != "" {
		return godotenv.Load(path)
	}
	err := godotenv.Load(dotEnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Validate checks values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PercentPrecision < 0 || c.PercentPrecision > 4:
		return fmt.Errorf("%w: percent_precision must be between 0 and 4", ErrInvalidConfig)
	case c.MaxEventsPerBout < 1:
		return fmt.Errorf("%w: max_events_per_bout must be positive", ErrInvalidConfig)
	}
	if _, ok := analytics.ParseBounceBackPolicy(c.BounceBackPolicy); !ok {
		return fmt.Errorf("%w: unknown bounce_back_policy %q", ErrInvalidConfig, c.BounceBackPolicy)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
