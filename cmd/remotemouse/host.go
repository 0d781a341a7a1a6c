// Package main runs the remotemouse touchpad and host processes.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/frudas24/remotemouse/internal/config"
	"github.com/frudas24/remotemouse/internal/discovery"
	"github.com/frudas24/remotemouse/internal/host"
	"github.com/frudas24/remotemouse/internal/metrics"
	"github.com/frudas24/remotemouse/internal/wininput"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// hostCmd receives commands from a pad and injects them locally.
func hostCmd() *cobra.Command {
	var allowNoop bool

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Receive commands from a pad and inject mouse and keyboard input",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			defer installFileLogger(cfg, debug)()
			logger := slog.Default()
			logStartup(logger, cfg)

			injector, err := wininput.NewInjector()
			if err != nil {
				if !errors.Is(err, wininput.ErrUnsupported) || !allowNoop {
					return err
				}
				logger.Warn("input injection unavailable, commands will be logged and dropped", "err", err)
			}

			// The pad pings every PING_SECONDS; a silent pad is dropped after a few missed pings.
			readWait := 4 * cfg.PongWait()
			if cfg.PingSeconds == 0 {
				readWait = 24 * time.Hour
			}
			reg := prometheus.NewRegistry()
			srv := host.NewServer(injector, host.Options{
				Logger:   logger.With("component", "host"),
				Metrics:  metrics.NewHost(reg),
				PongWait: readWait,
			})
			var gatherer prometheus.Gatherer
			if cfg.MetricsEnabled {
				gatherer = reg
			}

			if cfg.MDNSEnabled {
				adv, err := discovery.Advertise(cfg.MDNSName, logger.With("component", "discovery"))
				if err != nil {
					logger.Error("mdns advertise failed, pads need an explicit HOST_URL", "err", err)
				} else {
					defer adv.Close()
				}
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
			defer stop()

			server := &http.Server{
				Addr:              cfg.HostListenAddr,
				Handler:           srv.Router(gatherer),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logListenStatus(logger, cfg.HostListenAddr)
			return serve(ctx, server)
		},
	}
	cmd.Flags().BoolVar(&allowNoop, "allow-noop", false, "Start even when input injection is unsupported on this platform")
	return cmd
}
