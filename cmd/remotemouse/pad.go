// Package main runs the remotemouse touchpad and host processes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/frudas24/remotemouse/internal/app"
	"github.com/frudas24/remotemouse/internal/config"
	"github.com/spf13/cobra"
)

// padCmd serves the touchpad page and streams commands to the host.
func padCmd() *cobra.Command {
	var staticDir string

	cmd := &cobra.Command{
		Use:   "pad",
		Short: "Serve the touchpad page and forward gestures to the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPad(cmd.Context(), staticDir)
		},
	}
	cmd.Flags().StringVar(&staticDir, "static", "", "Serve the touchpad page from this directory instead of the embedded copy")
	return cmd
}

// runPad wires the pad application and blocks until shutdown.
func runPad(parent context.Context, staticDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defer installFileLogger(cfg, debug)()
	logger := slog.Default()
	logStartup(logger, cfg)
	logger.Info("host url", "url", cfg.HostURL)

	a, err := app.New(cfg, app.Options{Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router(staticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logListenStatus(logger, cfg.ListenAddr)
	return serve(ctx, server)
}

// serve runs server until ctx ends, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// contextOrBackground returns ctx or a background context when nil.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
