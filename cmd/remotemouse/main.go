// Package main runs the remotemouse touchpad and host processes.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/frudas24/remotemouse/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// version is set at build time.
var version = "dev"

// debug mirrors the --debug flag.
var debug bool

// main is the entrypoint for the remotemouse CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "remotemouse",
		Short: "Use a phone browser as a touchpad for another machine",
		Long: `remotemouse turns a touch screen into a virtual trackpad and keyboard.

The pad process serves the touchpad page, classifies gestures and streams
compact binary commands to the host process, which injects them as native
mouse and keyboard input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(os.Stderr, debug))
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable verbose debug logging")

	rootCmd.AddCommand(
		padCmd(),
		hostCmd(),
		replayCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a text logger on w at info or debug level.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// installFileLogger tees the default logger into a rotating file when cfg
// names one. The returned func closes the file.
func installFileLogger(cfg config.Config, debug bool) func() {
	path := cfg.LogPath(debug)
	if path == "" {
		return func() {}
	}
	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	slog.SetDefault(newLogger(io.MultiWriter(os.Stderr, rot), debug))
	slog.Info("logging to file", "path", path)
	return func() { _ = rot.Close() }
}
