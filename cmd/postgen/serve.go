package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/postgen/internal/metrics"
	"github.com/jackzampolin/postgen/internal/server"
	"github.com/jackzampolin/postgen/version"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the postgen server",
	Long: `Start the postgen HTTP server.

The server exposes the dataset, example and generation operations as JSON
endpoints, plus Prometheus metrics at /metrics. Provider settings in the
config file are reloaded when the file changes.

Endpoints include:
  /health  - Basic server health check
  /status  - Current dataset and configured providers

Examples:
  postgen serve                    # Start on the configured port (default 8080)
  postgen serve --port 3000        # Start on custom port
  postgen serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger, err := newLogger(os.Stdout)
		if err != nil {
			return err
		}

		h, mgr, err := loadHomeAndConfig()
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		cfg := mgr.Get()
		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") || host == "" {
			host = serveHost
		}
		if cmd.Flags().Changed("port") || port == "" {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			Home:          h,
			ConfigManager: mgr,
			Metrics:       metrics.New(version.GitRelease, version.GitCommit),
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
