package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	service "github.com/resumatch/resumatch/internal/app"
	"github.com/resumatch/resumatch/internal/config"
	"github.com/resumatch/resumatch/internal/training"
	"github.com/resumatch/resumatch/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "resumatch",
	Short: "Resume-to-job recommendation service",
	Long: "Resumatch serves job recommendations for uploaded resumes: it embeds " +
		"the resume, predicts its category and ranks the whole catalog with a " +
		"trained matcher.",
	// Default to `serve` so the bare binary runs the HTTP service.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trainCmd)
}

// setup initializes logging and loads configuration. Shared by every
// subcommand.
func setup(ctx context.Context) (*config.Config, logger.Logger, error) {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return nil, nil, err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return nil, nil, err
	}

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// newService builds the recommender service from configuration.
func newService(cfg *config.Config, log logger.Logger, forceTrain bool) *service.Service {
	return service.New(
		service.WithLogger(log),
		service.WithCatalogPath(cfg.CatalogPath),
		service.WithModelsDir(cfg.ModelsDir),
		service.WithEmbedderProvider(cfg.Embedder, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EmbeddingDim),
		service.WithTopNBounds(cfg.DefaultTopN, cfg.MaxTopN),
		service.WithEmbedConcurrency(cfg.EmbedWorkers, cfg.EmbedBatchSize),
		service.WithEmbedCacheSize(cfg.EmbedCacheSize),
		service.WithTrainConfig(training.Config{
			SampleSize:   cfg.TrainSampleSize,
			Epochs:       cfg.TrainEpochs,
			BatchSize:    cfg.TrainBatchSize,
			LearningRate: cfg.TrainLearningRate,
			Seed:         cfg.TrainSeed,
		}),
		service.WithForceTrain(forceTrain),
	)
}
