// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/resumatch/resumatch/internal/adapters/catalog"
	"github.com/resumatch/resumatch/internal/adapters/embedding"
	"github.com/resumatch/resumatch/internal/adapters/extract"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/recommend"
	"github.com/resumatch/resumatch/internal/domain/textproc"
	"github.com/resumatch/resumatch/internal/training"
	"github.com/resumatch/resumatch/pkg/logger"
	"github.com/resumatch/resumatch/pkg/metrics"
)

// Embedding provider names accepted by WithEmbedderProvider.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Service implements the API dependencies for the recommender. It owns the
// catalog, the embedding provider, the trained models and the ranking
// pipeline, all built once in Start and shared by every request.
type Service struct {
	mu sync.RWMutex

	// Core components
	extractors *extract.Registry
	normalizer *textproc.Normalizer
	embedder   *embedding.CachedEmbedder
	catalog    *catalog.Store
	models     *training.Result
	pipeline   *recommend.Pipeline

	// Configuration
	catalogPath    string
	modelsDir      string
	provider       string
	openAIKey      string
	openAIModel    string
	embeddingDim   int
	defaultTopN    int
	maxTopN        int
	embedWorkers   int
	embedBatchSize int
	embedCacheSize int
	trainCfg       training.Config
	forceTrain     bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithCatalogPath sets the job catalog CSV path.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.catalogPath = path
		}
	}
}

// WithModelsDir sets the directory for persisted model artifacts.
func WithModelsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.modelsDir = dir
		}
	}
}

// WithEmbedderProvider selects the embedding provider. key and model are
// only used by the openai provider; dim applies to both.
func WithEmbedderProvider(provider, key, model string, dim int) Option {
	return func(s *Service) {
		if provider != "" {
			s.provider = provider
		}
		s.openAIKey = key
		if model != "" {
			s.openAIModel = model
		}
		if dim > 0 {
			s.embeddingDim = dim
		}
	}
}

// WithTopNBounds sets the default and maximum recommendation counts.
func WithTopNBounds(defaultN, maxN int) Option {
	return func(s *Service) {
		if defaultN > 0 {
			s.defaultTopN = defaultN
		}
		if maxN > 0 {
			s.maxTopN = maxN
		}
	}
}

// WithEmbedConcurrency sets worker count and batch size for the startup
// catalog embedding pass.
func WithEmbedConcurrency(workers, batchSize int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.embedWorkers = workers
		}
		if batchSize > 0 {
			s.embedBatchSize = batchSize
		}
	}
}

// WithEmbedCacheSize bounds the embedding cache.
func WithEmbedCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.embedCacheSize = size
		}
	}
}

// WithTrainConfig sets the hyperparameters used when models must be
// trained from scratch.
func WithTrainConfig(cfg training.Config) Option {
	return func(s *Service) {
		s.trainCfg = cfg
	}
}

// WithForceTrain makes Start retrain even when artifacts exist on disk.
func WithForceTrain(force bool) Option {
	return func(s *Service) {
		s.forceTrain = force
	}
}

// WithExtractors overrides the resume extractor registry.
func WithExtractors(reg *extract.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.extractors = reg
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalogPath:    "data/jobs.csv",
		modelsDir:      "models/trained",
		provider:       ProviderLocal,
		embeddingDim:   384,
		defaultTopN:    10,
		maxTopN:        50,
		embedWorkers:   runtime.NumCPU(),
		embedBatchSize: 64,
		embedCacheSize: 10_000,
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the catalog, embeds it, and loads or trains the models.
// It must complete before the service can answer requests.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommender service...",
		logger.String("catalog", s.catalogPath),
		logger.String("embedder", s.provider),
	)

	if s.extractors == nil {
		s.extractors = extract.DefaultRegistry()
	}

	normalizer, err := textproc.New()
	if err != nil {
		return fmt.Errorf("build normalizer: %w", err)
	}
	s.normalizer = normalizer

	base, err := s.buildEmbedder()
	if err != nil {
		return err
	}
	s.embedder = embedding.NewCached(base, embedding.WithMaxSize(s.embedCacheSize))

	store, err := catalog.LoadCSV(ctx, s.catalogPath)
	if err != nil {
		return err
	}
	s.catalog = store
	s.logger.Info(ctx, "catalog loaded",
		logger.Int("jobs", store.Len()),
		logger.Int("categories", len(store.Categories())),
	)

	if err := s.embedCatalog(ctx); err != nil {
		return err
	}

	if err := s.loadOrTrain(ctx); err != nil {
		return err
	}

	pipeline, err := recommend.New(s.models.Matcher, s.models.Classifier, s.models.Encoder, s.catalog)
	if err != nil {
		return err
	}
	s.pipeline = pipeline

	metrics.UpdateModelLoaded(true)
	s.started = true
	s.logger.Info(ctx, "recommender service started",
		logger.Int("jobs", s.catalog.Len()),
		logger.Int("embedding_dim", s.embedder.Dimension()),
		logger.Any("formats", s.extractors.Supported()),
	)
	return nil
}

func (s *Service) buildEmbedder() (embedding.Embedder, error) {
	switch s.provider {
	case ProviderOpenAI:
		return embedding.NewOpenAI(s.openAIKey, s.openAIModel, s.embeddingDim)
	case ProviderLocal, "":
		return embedding.NewLocal(s.embeddingDim)
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", ErrBadProvider, s.provider)
	}
}

// embedCatalog embeds every posting's combined text. Texts go through the
// same normalizer as resumes so both sides of a matcher pair live in the
// same token space.
func (s *Service) embedCatalog(ctx context.Context) error {
	texts := s.catalog.CombinedTexts()
	for i, t := range texts {
		texts[i] = s.normalizer.Normalize(t)
	}

	start := time.Now()
	vecs, err := embedding.EmbedAll(ctx, s.embedder, texts, s.embedBatchSize, s.embedWorkers)
	if err != nil {
		return fmt.Errorf("embed catalog: %w", err)
	}
	if err := s.catalog.SetEmbeddings(vecs); err != nil {
		return err
	}
	s.logger.Info(ctx, "catalog embedded",
		logger.Int("jobs", len(vecs)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// loadOrTrain restores persisted artifacts when all of them are present
// and compatible, and trains from scratch otherwise.
func (s *Service) loadOrTrain(ctx context.Context) error {
	arts := training.NewArtifacts(s.modelsDir)

	if !s.forceTrain && arts.Exist() {
		res, err := arts.Load(s.embedder.Dimension())
		if err == nil {
			s.models = res
			s.logger.Info(ctx, "loaded trained models", logger.String("dir", s.modelsDir))
			return nil
		}
		s.logger.Warn(ctx, "stale model artifacts, retraining", logger.Error(err))
	} else if !s.forceTrain {
		s.logger.Info(ctx, "no trained models found, training for the first time; later startups will load them from disk")
	}

	res, err := training.Run(ctx, s.logger, s.catalog.Jobs(), s.catalog.Embeddings(), s.trainCfg)
	if err != nil {
		return err
	}
	if err := arts.Save(res); err != nil {
		return err
	}
	s.models = res
	s.logger.Info(ctx, "models trained and saved", logger.String("dir", s.modelsDir))
	return nil
}

// Stop releases service state. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping recommender service...")
	metrics.UpdateModelLoaded(false)
	s.started = false
	s.logger.Info(context.Background(), "recommender service stopped")
}

// ProcessResume runs the full pipeline for one uploaded resume: extract
// text, normalize, embed, classify and rank. filename is only used to pick
// the extractor by extension.
func (s *Service) ProcessResume(ctx context.Context, filename string, r io.Reader, req recommend.Request) (recommend.Result, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return recommend.Result{}, ErrNotStarted
	}

	metrics.RecordResumeProcessed()

	text, err := s.extractors.Extract(filename, r)
	if err != nil {
		metrics.RecordExtractionError()
		return recommend.Result{}, err
	}
	normalized := s.normalizer.Normalize(text)
	if normalized == "" {
		metrics.RecordExtractionError()
		return recommend.Result{}, fmt.Errorf("%w: %s", ErrEmptyResume, filename)
	}

	embedStart := time.Now()
	vec, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("embed resume: %w", err)
	}
	metrics.RecordEmbeddingLatency(float64(time.Since(embedStart).Milliseconds()))

	req = s.clampRequest(req)
	inferStart := time.Now()
	result, err := s.pipeline.Recommend(ctx, vec, req)
	if err != nil {
		return recommend.Result{}, err
	}
	metrics.RecordInferenceLatency(float64(time.Since(inferStart).Milliseconds()))
	metrics.RecordRecommendationsServed(len(result.Recommendations))
	metrics.RecordPredictedCategory(result.Predicted.Category)

	s.logger.Debug(ctx, "resume processed",
		logger.String("filename", filename),
		logger.String("predicted_category", result.Predicted.Category),
		logger.Int("recommendations", len(result.Recommendations)),
	)
	return result, nil
}

// clampRequest fills the default result count and enforces the cap.
func (s *Service) clampRequest(req recommend.Request) recommend.Request {
	if req.TopN <= 0 {
		req.TopN = s.defaultTopN
	}
	if req.TopN > s.maxTopN {
		req.TopN = s.maxTopN
	}
	return req
}

// MaxTopN returns the configured cap on the top_n parameter.
func (s *Service) MaxTopN() int { return s.maxTopN }

// SupportedFormats lists the resume file extensions the service accepts.
func (s *Service) SupportedFormats() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.extractors == nil {
		return nil
	}
	return s.extractors.Supported()
}

// Jobs returns up to limit catalog postings in catalog order; limit <= 0
// returns everything.
func (s *Service) Jobs(_ context.Context, limit int) ([]model.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	jobs := s.catalog.Jobs()
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// Categories returns the distinct catalog categories, sorted.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.catalog.Categories(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"embedder":      s.provider,
		"embedding_dim": s.embeddingDim,
		"default_top_n": s.defaultTopN,
		"max_top_n":     s.maxTopN,
	}
	if s.started {
		stats["jobs"] = s.catalog.Len()
		stats["categories"] = len(s.catalog.Categories())
		stats["embedding_cache_entries"] = s.embedder.Size()
		stats["formats"] = s.extractors.Supported()

		metrics.UpdateCatalogSize(s.catalog.Len())
		metrics.UpdateEmbeddingCacheSize(s.embedder.Size())
	}
	return stats
}
