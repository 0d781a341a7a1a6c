// Package main runs the remotemouse touchpad and host processes.
package main

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/frudas24/remotemouse/internal/config"
)

// logStartup prints configuration checks.
func logStartup(logger *slog.Logger, cfg config.Config) {
	logger.Info("remotemouse starting", "version", version)
	logFileStatus(logger, "env check", filepath.Join(cfg.DataDir, ".env"))
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = filepath.Join(cfg.DataDir, config.FileName)
	}
	logFileStatus(logger, "config check", configPath)
	logger.Debug("effective config",
		"sensitivity", cfg.Sensitivity,
		"scroll_sensitivity", cfg.ScrollSensitivity,
		"strip_sensitivity", cfg.StripSensitivity,
		"reconnect_delay", cfg.ReconnectDelay(),
		"frame_interval", cfg.FrameInterval(),
		"metrics", cfg.MetricsEnabled,
	)
}

// logFileStatus reports whether an optional config file was found.
func logFileStatus(logger *slog.Logger, what, path string) {
	if fileExists(path) {
		logger.Info(what+": ok", "path", path)
		return
	}
	logger.Info(what+": missing", "path", path)
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(logger *slog.Logger, addr string) {
	logger.Info("listening", "addr", addr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	logger.Info("local url", "url", "http://"+net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
