package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JustJay7/fir-manager/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API on HOST:PORT. Requests are expected to come through a
gateway that authenticates the user and forwards the X-User-ID header.

The server drains in-flight requests on SIGINT or SIGTERM, then closes the
AI client, the PDF browser and the event publisher.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	b, err := openBase()
	if err != nil {
		return err
	}
	defer b.close()

	svc, err := wire(cmd.Context(), b)
	if err != nil {
		return err
	}

	srv := server.New(b.cfg, svc.deps, svc.closers, b.log)

	b.log.Info("Starting FIR manager",
		"host", b.cfg.Host,
		"port", b.cfg.Port,
		"database", b.cfg.DatabaseDriver,
		"storage", b.cfg.StorageBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
