// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep defaults in New and layer file/env on top in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at the job catalog CSV file.
	CatalogPath string `koanf:"catalog_path"`

	// ModelsDir holds the persisted matcher/classifier/label-encoder artifacts.
	ModelsDir string `koanf:"models_dir"`

	// Embedder selects the embedding provider: "local" or "openai".
	Embedder string `koanf:"embedder"`

	// OpenAIAPIKey authenticates the OpenAI embedder. Required when
	// Embedder is "openai".
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIModel names the embedding model, e.g. "text-embedding-3-small".
	OpenAIModel string `koanf:"openai_model"`

	// EmbeddingDim is the embedding vector dimension. Applies to the local
	// embedder and, when supported, is requested from the remote one.
	EmbeddingDim int `koanf:"embedding_dim"`

	// DefaultTopN is the number of recommendations returned when the
	// client does not specify one.
	DefaultTopN int `koanf:"default_top_n"`

	// MaxTopN caps the top_n request parameter.
	MaxTopN int `koanf:"max_top_n"`

	// MaxUploadBytes caps the size of an uploaded resume.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// EmbedWorkers bounds concurrency when embedding the catalog at startup.
	EmbedWorkers int `koanf:"embed_workers"`

	// EmbedBatchSize is the number of texts per embedding batch call.
	EmbedBatchSize int `koanf:"embed_batch_size"`

	// EmbedCacheSize bounds the embedding cache entry count.
	EmbedCacheSize int `koanf:"embed_cache_size"`

	// Training knobs for the one-time model build.
	TrainSampleSize   int     `koanf:"train_sample_size"`
	TrainEpochs       int     `koanf:"train_epochs"`
	TrainBatchSize    int     `koanf:"train_batch_size"`
	TrainLearningRate float64 `koanf:"train_learning_rate"`
	TrainSeed         int64   `koanf:"train_seed"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		CatalogPath:       "data/jobs.csv",
		ModelsDir:         "models/trained",
		Embedder:          "local",
		OpenAIModel:       "text-embedding-3-small",
		EmbeddingDim:      384,
		DefaultTopN:       10,
		MaxTopN:           50,
		MaxUploadBytes:    10 << 20, // 10 MiB
		EmbedWorkers:      runtime.NumCPU(),
		EmbedBatchSize:    64,
		EmbedCacheSize:    10_000,
		TrainSampleSize:   10_000,
		TrainEpochs:       5,
		TrainBatchSize:    32,
		TrainLearningRate: 0.001,
		TrainSeed:         42,
	}
}
