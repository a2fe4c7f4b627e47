package main

import (
	"github.com/spf13/cobra"

	"github.com/brieflab/brief/internal/config"
	"github.com/brieflab/brief/internal/metrics"
	"github.com/brieflab/brief/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the brief HTTP server",
	Long: `Start the brief HTTP server.

Summarization requests run asynchronously; poll the status endpoint and
fetch the report once the run completes.

The server provides:
  - POST /api/summarize/url   - Summarize a web page
  - POST /api/summarize/text  - Summarize raw text
  - POST /api/summarize/file  - Summarize an uploaded file
  - GET  /api/status/{id}     - Run status
  - GET  /api/report/{id}     - Rendered HTML report

Examples:
  brief serve                    # Start on default port 8080
  brief serve --port 3000        # Start on custom port
  brief serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()
		cfg := cm.Get()

		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != "" {
			cfg.Server.Port = servePort
		}

		rec := metrics.NewRecorder()
		a, err := buildApp(cfg, logger, rec)
		if err != nil {
			return err
		}
		srv := server.New(server.Config{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port,
			App:     a,
			Metrics: rec,
			Logger:  logger,
		})

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on")

	rootCmd.AddCommand(serveCmd)
}
