package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/resumatch/resumatch/pkg/logger"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the models and exit",
	Long: "Load the catalog, embed it, train the matcher and classifier " +
		"from scratch, persist the artifacts to the models directory and exit. " +
		"Useful for rebuilding artifacts after a catalog change.",
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Force a retrain even when artifacts already exist on disk.
	svc := newService(cfg, log, true)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	svc.Stop()

	log.Info(ctx, "models trained", logger.String("models_dir", cfg.ModelsDir))
	return nil
}
