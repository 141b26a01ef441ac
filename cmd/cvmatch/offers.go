package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/app"
	"digitalcook/cv-matcher/internal/models"
)

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Inspect and load job offers",
}

var offersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active offers of the configured backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		output, _ := cmd.Flags().GetString("output")

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

		switch output {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(offers)
		case "table":
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tCITY\tCONTRACT")
			for _, o := range offers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Title, o.Company, o.City, o.ContractType)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown output format %q", output)
		}
	},
}

var offersImportCmd = &cobra.Command{
	Use:   "import <offers.json>",
	Short: "Insert offers from a JSON array into the configured backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read offers file: %w", err)
		}
		var offers []models.Offer
		if err := json.Unmarshal(data, &offers); err != nil {
			return fmt.Errorf("failed to decode offers: %w", err)
		}

		ctx, stop := signalContext()
		defer stop()

		stores, err := app.OpenStores(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer stores.Close()

		if stores.Writer == nil {
			return errors.New("the qdrant backend is read-only, import into postgres and run the ingest script")
		}

		for i := range offers {
			if err := stores.Writer.Create(ctx, &offers[i]); err != nil {
				return fmt.Errorf("failed to import offer %q: %w", offers[i].Title, err)
			}
			lg.Debug("Offer imported", zap.String("id", offers[i].ID.String()), zap.String("title", offers[i].Title))
		}

		lg.Info("✅ Offers imported", zap.Int("count", len(offers)), zap.String("backend", cfg.Offers.Backend))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offersCmd)
	offersCmd.AddCommand(offersListCmd, offersImportCmd)

	offersListCmd.Flags().StringP("output", "o", "table", "output format: table or json")
}
