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
//  2. file (YAML) if RESUMATCH_CONFIG is set
//  3. env (prefix RESUMATCH_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RESUMATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RESUMATCH_ADDR, RESUMATCH_CATALOG_PATH, ...
	// Map env keys like RESUMATCH_MODELS_DIR -> models_dir (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RESUMATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "resumatch_")
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CatalogPath == "":
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	case c.Embedder != "local" && c.Embedder != "openai":
		return fmt.Errorf("%w: embedder must be \"local\" or \"openai\"", ErrInvalidConfig)
	case c.Embedder == "openai" && c.OpenAIAPIKey == "":
		return fmt.Errorf("%w: openai_api_key is required for the openai embedder", ErrInvalidConfig)
	case c.EmbeddingDim <= 0:
		return fmt.Errorf("%w: embedding_dim must be positive", ErrInvalidConfig)
	case c.DefaultTopN <= 0 || c.MaxTopN < c.DefaultTopN:
		return fmt.Errorf("%w: default_top_n must be positive and not exceed max_top_n", ErrInvalidConfig)
	}
	return nil
}
