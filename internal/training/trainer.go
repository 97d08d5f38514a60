package training

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/resumatch/resumatch/internal/domain/labels"
	"github.com/resumatch/resumatch/internal/domain/model"
	"github.com/resumatch/resumatch/internal/domain/neural"
	"github.com/resumatch/resumatch/pkg/logger"
	"github.com/resumatch/resumatch/pkg/metrics"
)

// Defaults for the training run. These mirror the hyperparameters the
// persisted artifacts were originally produced with, so a retrain from
// scratch lands on comparable models.
const (
	defaultSampleSize   = 10_000
	defaultEpochs       = 5
	defaultBatchSize    = 32
	defaultLearningRate = 0.001
	defaultSeed         = 42
)

// Config controls a training run.
type Config struct {
	// SampleSize is the number of (resume, job) pairs sampled for the
	// matcher. Half the pairs are drawn from the same category.
	SampleSize int
	// Epochs, BatchSize and LearningRate feed the SGD loop.
	Epochs       int
	BatchSize    int
	LearningRate float64
	// Seed makes pair sampling and weight init reproducible.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.SampleSize <= 0 {
		c.SampleSize = defaultSampleSize
	}
	if c.Epochs <= 0 {
		c.Epochs = defaultEpochs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.LearningRate <= 0 {
		c.LearningRate = defaultLearningRate
	}
	if c.Seed == 0 {
		c.Seed = defaultSeed
	}
	return c
}

// Result bundles the trained models with the label encoder they were
// trained against.
type Result struct {
	Matcher    *neural.Matcher
	Classifier *neural.Classifier
	Encoder    *labels.Encoder
}

// Run trains the matcher and the classifier from the catalog. jobs and
// embeddings are parallel slices in catalog order.
func Run(ctx context.Context, log logger.Logger, jobs []model.JobPosting, embeddings [][]float32, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if len(jobs) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d jobs, %d embeddings", ErrInsufficientData, len(jobs), len(embeddings))
	}
	if len(jobs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 jobs, got %d", ErrInsufficientData, len(jobs))
	}
	dim := len(embeddings[0])

	categories := make([]string, len(jobs))
	for i, job := range jobs {
		categories[i] = job.Category
	}
	enc, err := labels.NewFromCategories(categories)
	if err != nil {
		return nil, fmt.Errorf("build label encoder: %w", err)
	}

	start := time.Now()
	log.Info(ctx, "training models",
		logger.Int("jobs", len(jobs)),
		logger.Int("categories", enc.Len()),
		logger.Int("sample_size", cfg.SampleSize),
		logger.Int("epochs", cfg.Epochs),
	)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible training, not crypto
	trainCfg := neural.TrainConfig{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Rng:          rng,
	}

	matcher, err := trainMatcher(ctx, jobs, embeddings, dim, cfg.SampleSize, rng, trainCfg)
	if err != nil {
		return nil, err
	}
	classifier, err := trainClassifier(ctx, jobs, embeddings, enc, dim, rng, trainCfg)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordTrainingRun()
	metrics.RecordTrainingDuration(elapsed.Seconds())
	log.Info(ctx, "training complete", logger.Duration("elapsed", elapsed))

	return &Result{Matcher: matcher, Classifier: classifier, Encoder: enc}, nil
}

func trainMatcher(ctx context.Context, jobs []model.JobPosting, embeddings [][]float32, dim, sampleSize int, rng *rand.Rand, cfg neural.TrainConfig) (*neural.Matcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	left, right, targets, err := samplePairs(jobs, embeddings, sampleSize, rng)
	if err != nil {
		return nil, err
	}
	matcher, err := neural.NewMatcher(dim, rng)
	if err != nil {
		return nil, err
	}
	if err := matcher.Train(left, right, targets, cfg); err != nil {
		return nil, fmt.Errorf("train matcher: %w", err)
	}
	return matcher, nil
}

func trainClassifier(ctx context.Context, jobs []model.JobPosting, embeddings [][]float32, enc *labels.Encoder, dim int, rng *rand.Rand, cfg neural.TrainConfig) (*neural.Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	classes := make([]int, len(jobs))
	for i, job := range jobs {
		class, err := enc.Encode(job.Category)
		if err != nil {
			return nil, err
		}
		classes[i] = class
	}
	classifier, err := neural.NewClassifier(dim, enc.Len(), rng)
	if err != nil {
		return nil, err
	}
	if err := classifier.Train(embeddings, classes, cfg); err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}
	return classifier, nil
}

// samplePairs draws sampleSize embedding pairs: target 1 for two postings
// from the same category, target 0 otherwise. Sampling is balanced where
// the catalog allows it; a catalog with a single category can only produce
// positives and one where every category has a single posting can only
// produce negatives.
func samplePairs(jobs []model.JobPosting, embeddings [][]float32, sampleSize int, rng *rand.Rand) (left, right [][]float32, targets []float64, err error) {
	byCategory := make(map[string][]int)
	for i, job := range jobs {
		byCategory[job.Category] = append(byCategory[job.Category], i)
	}

	var positivePossible bool
	for _, idx := range byCategory {
		if len(idx) >= 2 {
			positivePossible = true
			break
		}
	}
	negativePossible := len(byCategory) >= 2
	if !positivePossible && !negativePossible {
		return nil, nil, nil, fmt.Errorf("%w: catalog cannot produce training pairs", ErrInsufficientData)
	}

	left = make([][]float32, 0, sampleSize)
	right = make([][]float32, 0, sampleSize)
	targets = make([]float64, 0, sampleSize)

	for len(targets) < sampleSize {
		wantPositive := rng.Intn(2) == 0
		if wantPositive && !positivePossible {
			wantPositive = false
		}
		if !wantPositive && !negativePossible {
			wantPositive = true
		}

		a := rng.Intn(len(jobs))
		var b int
		if wantPositive {
			peers := byCategory[jobs[a].Category]
			for len(peers) < 2 {
				a = rng.Intn(len(jobs))
				peers = byCategory[jobs[a].Category]
			}
			b = peers[rng.Intn(len(peers))]
			for b == a {
				b = peers[rng.Intn(len(peers))]
			}
		} else {
			b = rng.Intn(len(jobs))
			for jobs[b].Category == jobs[a].Category {
				b = rng.Intn(len(jobs))
			}
		}

		left = append(left, embeddings[a])
		right = append(right, embeddings[b])
		if wantPositive {
			targets = append(targets, 1)
		} else {
			targets = append(targets, 0)
		}
	}
	return left, right, targets, nil
}
