package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/app"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the experience-sentence classifier and save its artifacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		flags := cmd.Flags()
		if dataset, _ := flags.GetString("dataset"); dataset != "" {
			cfg.Model.DatasetPath = dataset
		}
		if flags.Changed("trees") {
			cfg.Model.Trees, _ = flags.GetInt("trees")
		}
		if flags.Changed("seed") {
			cfg.Model.Seed, _ = flags.GetUint64("seed")
		}

		ctx, stop := signalContext()
		defer stop()

		stores, err := app.OpenStores(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer stores.Close()

		pipeline, err := app.BuildPipeline(ctx, cfg, stores, lg)
		if err != nil {
			return err
		}

		start := time.Now()
		if _, err := pipeline.Provisioner.Train(ctx); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		lg.Info("✅ Classifier trained",
			zap.String("dataset", cfg.Model.DatasetPath),
			zap.String("artifacts", cfg.Model.ArtifactBackend),
			zap.Int("trees", cfg.Model.Trees),
			zap.Duration("elapsed", time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("dataset", "", "labelled sentences (.xlsx or .csv), overrides model.dataset-path")
	trainCmd.Flags().Int("trees", 100, "number of trees in the forest")
	trainCmd.Flags().Uint64("seed", 42, "random seed")
}
