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

const envPrefix = "RAFFLE_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RAFFLE_CONFIG is set
//  3. env (prefix RAFFLE_), e.g. RAFFLE_API_BASE, RAFFLE_SITE_TITLE
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RAFFLE_API_BASE -> api_base. The site_ prefix maps onto the nested
	// site block so RAFFLE_SITE_TITLE -> site.title.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if rest, ok := strings.CutPrefix(s, "site_"); ok {
			return "site." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.APIBase) == "":
		return fmt.Errorf("%w: api_base must not be empty", ErrInvalidConfig)
	case c.TokenKey == "":
		return fmt.Errorf("%w: token_key must not be empty", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.SeedParticipants < 0:
		return fmt.Errorf("%w: seed_participants must not be negative", ErrInvalidConfig)
	case c.NotifyWorkers < 0:
		return fmt.Errorf("%w: notify_workers must not be negative", ErrInvalidConfig)
	case c.NotifyWorkers > 0 && c.NotifyQueueSize <= 0:
		return fmt.Errorf("%w: notify_queue_size must be positive when workers are enabled", ErrInvalidConfig)
	}
	switch c.TokenStore {
	case TokenStoreNone, TokenStoreMemory:
	case TokenStoreSQLite:
		if c.TokenStorePath == "" {
			return fmt.Errorf("%w: token_store_path must not be empty for the sqlite store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown token_store %q", ErrInvalidConfig, c.TokenStore)
	}
	return nil
}
