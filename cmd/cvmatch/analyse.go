package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"digitalcook/cv-matcher/internal/app"
	"digitalcook/cv-matcher/internal/models"
)

var analyseCmd = &cobra.Command{
	Use:   "analyse <resume.pdf>",
	Short: "Analyse one résumé and print the matching offers as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		languages, _ := cmd.Flags().GetStringSlice("languages")

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
		if _, err := pipeline.Provisioner.Ensure(ctx); err != nil {
			return err
		}

		result, err := pipeline.Analyzer.AnalyzeFile(ctx, args[0], models.AnalyseRequest{Languages: languages})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(analyseCmd)

	analyseCmd.Flags().StringSlice("languages", nil, `candidate languages, e.g. "Français (C1),Anglais (B2)"`)
}
