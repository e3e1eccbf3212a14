package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :5000)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload and browse HTTP API",
	Long: `Serve the HTTP API used by the dashboard admin page.

Endpoints:
  POST /api/upload                         upload a CSV export and regenerate
  POST /api/process                        regenerate from a file in the data dir
  GET  /api/files                          list generated dashboard tables
  GET  /api/view/{folder}/{filename}       read a table
  GET  /api/download/{folder}/{filename}   download a table
  GET  /metrics                            Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	log := newLogger(cfg)
	srv := server.New(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return srv.Shutdown()
	}
}
