// Package config loads file and environment configuration for remotemouse.
package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr        = "0.0.0.0:8787"
	defaultHostListenAddr    = "0.0.0.0:8788"
	defaultHostURL           = "ws://127.0.0.1:8788/ws"
	defaultDataDir           = "./data"
	defaultSensitivity       = 2.0
	defaultScrollSensitivity = 1.0
	defaultStripSensitivity  = 1.0
	defaultReconnectDelayMs  = 3000
	defaultFrameIntervalMs   = 16
	defaultPingSeconds       = 2
	defaultPongTimeoutSecs   = 8
	defaultMetricsEnabled    = true
	defaultMDNSName          = "remote-mouse.local"
	defaultMDNSEnabled       = true

	// FileName is the YAML file looked up in DATA_DIR when CONFIG_FILE is unset.
	FileName = "remotemouse.yaml"
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr         string  `yaml:"listen_addr"`
	HostListenAddr     string  `yaml:"host_listen_addr"`
	HostURL            string  `yaml:"host_url"`
	DataDir            string  `yaml:"-"`
	Sensitivity        float64 `yaml:"sensitivity"`
	ScrollSensitivity  float64 `yaml:"scroll_sensitivity"`
	StripSensitivity   float64 `yaml:"strip_sensitivity"`
	ReconnectDelayMs   int     `yaml:"reconnect_delay_ms"`
	FrameIntervalMs    int     `yaml:"frame_interval_ms"`
	PingSeconds        int     `yaml:"ping_seconds"`
	PongTimeoutSeconds int     `yaml:"pong_timeout_seconds"`
	MetricsEnabled     bool    `yaml:"metrics_enabled"`
	MDNSName           string  `yaml:"mdns_name"`
	MDNSEnabled        bool    `yaml:"mdns_enabled"`
	LogFile            string  `yaml:"log_file"`
}

// ReconnectDelay returns the reconnect delay as a duration.
func (c Config) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

// FrameInterval returns the move flush interval as a duration.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// PingInterval returns the websocket keepalive interval. Zero disables pings.
func (c Config) PingInterval() time.Duration {
	if c.PingSeconds == 0 {
		return -1
	}
	return time.Duration(c.PingSeconds) * time.Second
}

// PongWait returns how long the client waits for a pong.
func (c Config) PongWait() time.Duration {
	return time.Duration(c.PongTimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:         defaultListenAddr,
		HostListenAddr:     defaultHostListenAddr,
		HostURL:            defaultHostURL,
		DataDir:            defaultDataDir,
		Sensitivity:        defaultSensitivity,
		ScrollSensitivity:  defaultScrollSensitivity,
		StripSensitivity:   defaultStripSensitivity,
		ReconnectDelayMs:   defaultReconnectDelayMs,
		FrameIntervalMs:    defaultFrameIntervalMs,
		PingSeconds:        defaultPingSeconds,
		PongTimeoutSeconds: defaultPongTimeoutSecs,
		MetricsEnabled:     defaultMetricsEnabled,
		MDNSName:           defaultMDNSName,
		MDNSEnabled:        defaultMDNSEnabled,
	}
}

// LogPath returns the log file to write, or "" for stderr only. Debug runs
// without LOG_FILE log to DATA_DIR/logs/remotemouse.log.
func (c Config) LogPath(debug bool) string {
	if c.LogFile != "" {
		return c.LogFile
	}
	if debug {
		return filepath.Join(c.DataDir, "logs", "remotemouse.log")
	}
	return ""
}

// Load reads configuration from the YAML file, DATA_DIR/.env and environment
// variables. Later layers win: environment over .env over YAML over defaults.
func Load() (Config, error) {
	cfg := Default()
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}
	// .env may itself move DATA_DIR or point at a config file.
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)

	path := envString("CONFIG_FILE", filepath.Join(cfg.DataDir, FileName))
	if err := loadYAMLFile(path, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.HostURL = discoveredHostURL(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	var err error
	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.HostListenAddr = envString("HOST_LISTEN_ADDR", cfg.HostListenAddr)
	cfg.HostURL = envString("HOST_URL", cfg.HostURL)

	if cfg.Sensitivity, err = envFloat("SENSITIVITY", cfg.Sensitivity); err != nil {
		return err
	}
	if cfg.ScrollSensitivity, err = envFloat("SCROLL_SENSITIVITY", cfg.ScrollSensitivity); err != nil {
		return err
	}
	if cfg.StripSensitivity, err = envFloat("STRIP_SENSITIVITY", cfg.StripSensitivity); err != nil {
		return err
	}
	if cfg.ReconnectDelayMs, err = envInt("RECONNECT_DELAY_MS", cfg.ReconnectDelayMs); err != nil {
		return err
	}
	if cfg.FrameIntervalMs, err = envInt("FRAME_INTERVAL_MS", cfg.FrameIntervalMs); err != nil {
		return err
	}
	if cfg.PingSeconds, err = envInt("PING_SECONDS", cfg.PingSeconds); err != nil {
		return err
	}
	if cfg.PongTimeoutSeconds, err = envInt("PONG_TIMEOUT_SECONDS", cfg.PongTimeoutSeconds); err != nil {
		return err
	}
	cfg.MetricsEnabled = envBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MDNSName = envString("MDNS_NAME", cfg.MDNSName)
	cfg.MDNSEnabled = envBool("MDNS_ENABLED", cfg.MDNSEnabled)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)
	return nil
}

// discoveredHostURL fills an empty HOST_URL with the mDNS name and the host
// listen port.
func discoveredHostURL(cfg Config) string {
	if cfg.HostURL != "" || cfg.MDNSName == "" {
		return cfg.HostURL
	}
	_, port, err := net.SplitHostPort(cfg.HostListenAddr)
	if err != nil {
		return cfg.HostURL
	}
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(strings.TrimSuffix(cfg.MDNSName, "."), port), Path: "/ws"}
	return u.String()
}

// Validate checks value ranges and names the offending key.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.HostListenAddr == "" {
		return errors.New("HOST_LISTEN_ADDR must not be empty")
	}
	if c.HostURL == "" {
		return errors.New("HOST_URL must not be empty unless MDNS_NAME is set")
	}
	u, err := url.Parse(c.HostURL)
	if err != nil {
		return fmt.Errorf("HOST_URL is invalid: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("HOST_URL must use ws or wss, got %q", u.Scheme)
	}
	if !positiveFinite(c.Sensitivity) {
		return errors.New("SENSITIVITY must be > 0")
	}
	if !positiveFinite(c.ScrollSensitivity) {
		return errors.New("SCROLL_SENSITIVITY must be > 0")
	}
	if !positiveFinite(c.StripSensitivity) {
		return errors.New("STRIP_SENSITIVITY must be > 0")
	}
	if c.ReconnectDelayMs <= 0 {
		return errors.New("RECONNECT_DELAY_MS must be > 0")
	}
	if c.FrameIntervalMs <= 0 {
		return errors.New("FRAME_INTERVAL_MS must be > 0")
	}
	if c.PingSeconds < 0 {
		return errors.New("PING_SECONDS must be >= 0")
	}
	if c.PongTimeoutSeconds <= 0 {
		return errors.New("PONG_TIMEOUT_SECONDS must be > 0")
	}
	if c.PingSeconds > 0 && c.PongTimeoutSeconds <= c.PingSeconds {
		return errors.New("PONG_TIMEOUT_SECONDS must exceed PING_SECONDS")
	}
	if c.MDNSEnabled && c.MDNSName == "" {
		return errors.New("MDNS_NAME must be set when MDNS_ENABLED is on")
	}
	if c.MDNSName != "" && !strings.HasSuffix(strings.TrimSuffix(c.MDNSName, "."), ".local") {
		return fmt.Errorf("MDNS_NAME must end in .local, got %q", c.MDNSName)
	}
	return nil
}

// positiveFinite reports whether v is a usable multiplier.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// loadYAMLFile decodes path into cfg when the file exists.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envFloat returns a float env override when present, otherwise a default.
func envFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file without overriding the
// process environment.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}
