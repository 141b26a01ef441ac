package main

import (
	"github.com/spf13/cobra"

	"digitalcook/cv-matcher/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the analysis worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer lg.Sync()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}

		ctx, stop := signalContext()
		defer stop()
		return app.Serve(ctx, cfg, lg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "listen port, overrides server.port")
}
