// Package config provides configuration parsing for procgraph.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvInterval = "PROCGRAPH_INTERVAL"
	EnvHistory  = "PROCGRAPH_HISTORY"
	EnvLogLevel = "PROCGRAPH_LOG_LEVEL"
)

// Window length limits of sampling.history. The TUI grow and shrink keys
// stay inside the same range.
const (
	MinHistory = 1
	MaxHistory = 3600
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Config represents the procgraph configuration.
type Config struct {
	// Sampling controls how often samples are taken and how many are kept.
	Sampling SamplingConfig `yaml:"sampling"`

	// Log controls the log file. The TUI owns the terminal, so logs never
	// go to stderr while it runs.
	Log LogConfig `yaml:"log"`

	// Display holds TUI rendering settings.
	Display DisplayConfig `yaml:"display"`
}

// SamplingConfig controls the sample clock and window length.
type SamplingConfig struct {
	// Interval between samples (e.g. "1s", "500ms").
	Interval Duration `yaml:"interval"`
	// History is the number of samples each graph keeps.
	History int `yaml:"history"`
	// DiskPath is the filesystem whose usage is reported.
	DiskPath string `yaml:"disk_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// File is the path for log output.
	File string `yaml:"file"`
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// DisplayConfig holds TUI rendering settings.
type DisplayConfig struct {
	// Tab is the tab shown on startup, one of Tabs.
	Tab string `yaml:"tab"`
	// PerCore draws one CPU series per core instead of the aggregate only.
	PerCore bool `yaml:"per_core"`
	// Palette overrides the series colors (hex strings).
	Palette []string `yaml:"palette"`
}

// Duration is a time.Duration written as a string ("1s", "250ms") in YAML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string. Empty text is zero.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Tabs lists the valid values of Display.Tab in display order.
var Tabs = []string{"overview", "cpu", "memory", "network"}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Sampling: SamplingConfig{
			Interval: Duration{time.Second},
			History:  120,
			DiskPath: "/",
		},
		Log: LogConfig{
			File:  filepath.Join(xdgCacheHome(home), "procgraph", "procgraph.log"),
			Level: "info",
		},
		Display: DisplayConfig{
			Tab:     "overview",
			PerCore: true,
		},
	}
}

// Load reads configuration from $XDG_CONFIG_HOME/procgraph/config.yaml,
// falling back to defaults when the file does not exist.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPath())
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), "procgraph", "config.yaml")
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults (with environment overrides applied).
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := applyEnvOverrides(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults and applies environment
// overrides. An empty document is not an error.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for logical consistency.
func (c *Config) Validate() error {
	if c.Sampling.Interval.Duration <= 0 {
		return fmt.Errorf("%w: sampling.interval must be positive, got %s", ErrInvalid, c.Sampling.Interval.Duration)
	}
	if c.Sampling.History < MinHistory || c.Sampling.History > MaxHistory {
		return fmt.Errorf("%w: sampling.history must be in [%d, %d], got %d",
			ErrInvalid, MinHistory, MaxHistory, c.Sampling.History)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if !validTab(c.Display.Tab) {
		return fmt.Errorf("%w: display.tab must be one of %s, got %q", ErrInvalid, strings.Join(Tabs, ", "), c.Display.Tab)
	}
	return nil
}

// SlogLevel returns the configured log level. Validate reports bad values.
func (c *Config) SlogLevel() slog.Level {
	l, _ := ParseLevel(c.Log.Level)
	return l
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}

func validTab(tab string) bool {
	for _, t := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvInterval, err)
		}
		cfg.Sampling.Interval = Duration{d}
	}
	if v := os.Getenv(EnvHistory); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvHistory, err)
		}
		cfg.Sampling.History = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
