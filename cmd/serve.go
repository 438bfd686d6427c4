package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/holocron/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the favorites JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites(ctx)
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, server.NewAPI(store, r.logger), r.logger)
	r.writePlain("Serving favorites on http://%s (Ctrl+C to stop)\n", srv.Addr())
	return srv.Run(ctx)
}
