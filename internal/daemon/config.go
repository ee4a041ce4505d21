// Package daemon holds process-level setup shared by the CLI and the API
// server: configuration, logging and wiring of the journal services.
package daemon

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// HomeEnv overrides the MindfulFlow home directory.
const HomeEnv = "MINDFULFLOW_HOME"

// ConfigFileName is the config file inside the home directory.
const ConfigFileName = "config.toml"

// ─── Config ─────────────────────────────────────────────────────────────────

// Config is the full configuration, read from config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Locale  LocaleConfig  `toml:"locale"`
	Stats   StatsConfig   `toml:"stats"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig locates the database. An empty DataDir means the home
// directory.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LocaleConfig sets the time zone used for calendar days. Empty means the
// system zone.
type LocaleConfig struct {
	Timezone string `toml:"timezone"`
}

// StatsConfig sets dashboard defaults.
type StatsConfig struct {
	DefaultRangeDays int `toml:"default_range_days"` // 0 = all time
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 5280,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Enabled: true},
		Stats:   StatsConfig{DefaultRangeDays: 30},
	}
}

// HomeDir returns $MINDFULFLOW_HOME or ~/.mindfulflow.
func HomeDir() (string, error) {
	if h := os.Getenv(HomeEnv); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".mindfulflow"), nil
}

// LoadConfig reads path over the defaults. A missing file yields defaults.
// An empty path means HomeDir()/config.toml.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	home, err := HomeDir()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		path = filepath.Join(home, ConfigFileName)
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = home
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Stats.DefaultRangeDays < 0 {
		return fmt.Errorf("stats.default_range_days %d must not be negative", c.Stats.DefaultRangeDays)
	}
	return nil
}

// Location resolves locale.timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Locale.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return nil, fmt.Errorf("locale.timezone: %w", err)
	}
	return loc, nil
}

// WriteConfig writes cfg as TOML to path, creating parent directories.
func WriteConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeConfig(f, cfg)
}

// EncodeConfig writes cfg as TOML to w.
func EncodeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// ─── Logging ────────────────────────────────────────────────────────────────

// NewLogger builds the slog logger described by c, writing to w.
func NewLogger(c LogConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q: want debug, info, warn or error", s)
}
