package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/transport/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the actions over HTTP",
	Long: `Starts an HTTP server exposing the generate, summarize and suggest
actions, the template catalog, health checks and Prometheus metrics.

Every action endpoint answers 200 with either a result or its substitute
value; generator failures are visible in the logs and metrics only.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	// A server always talks to the generator itself.
	backend, err := newLocalBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Language, catalog.DefaultDir())
	if err != nil {
		if cat == nil {
			return err
		}
		log.Warn("some user templates were skipped", zap.Error(err))
	}

	log.Info("serving actions",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("templates", cat.Count()))

	srv := httpapi.NewServer(backend, cat, backend.Ping, log)
	return srv.ListenAndServe(cmd.Context(), addr)
}
