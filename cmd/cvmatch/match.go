package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/app"
	"digitalcook/cv-matcher/internal/matching"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/services"
)

var matchCmd = &cobra.Command{
	Use:   "match <resume.pdf>...",
	Short: "Pick the best résumé for every active offer by keyword coverage",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		parser := services.NewPDFParserService()
		cvs := make([]matching.CVText, 0, len(args))
		for _, path := range args {
			if err := services.CheckPDF(path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			text, err := parser.ExtractText(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			cvs = append(cvs, matching.CVText{Name: filepath.Base(path), Text: text})
		}

		ctx, stop := signalContext()
		defer stop()

		stores, err := app.OpenStores(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer stores.Close()

		offers, err := stores.Offers.ListActive(ctx)
		if err != nil {
			return err
		}
		snapshots := make([]models.OfferSnapshot, 0, len(offers))
		for _, o := range offers {
			snapshots = append(snapshots, o.Snapshot())
		}

		matches := matching.MatchCVs(snapshots, cvs, cfg.Matching.Shortlist)
		lg.Debug("Résumés matched", zap.Int("cvs", len(cvs)), zap.Int("offers", len(snapshots)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models.MatchOffersResponse{Matches: matches})
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
