package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"jetski/internal/app"
	"jetski/internal/server"
	"jetski/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long:  `Serve the JetSki REST API and Prometheus metrics on $PORT (default 8000).`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	svc, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Warn("Failed to close service", "error", err)
		}
	}()

	return server.Run(ctx, svc)
}
