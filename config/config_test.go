package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets the override variables for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvInterval, EnvHistory, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sampling.Interval.Duration != time.Second {
		t.Errorf("expected Interval=1s, got %s", cfg.Sampling.Interval)
	}
	if cfg.Sampling.History != 120 {
		t.Errorf("expected History=120, got %d", cfg.Sampling.History)
	}
	if cfg.Sampling.DiskPath != "/" {
		t.Errorf("expected DiskPath=/, got %s", cfg.Sampling.DiskPath)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Log.Level)
	}
	if !strings.HasSuffix(cfg.Log.File, filepath.Join("procgraph", "procgraph.log")) {
		t.Errorf("unexpected log file %s", cfg.Log.File)
	}
	if cfg.Display.Tab != "overview" {
		t.Errorf("expected Tab=overview, got %s", cfg.Display.Tab)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	if got, want := DefaultConfig().Log.File, filepath.Join(dir, "cache", "procgraph", "procgraph.log"); got != want {
		t.Errorf("Log.File = %s, want %s", got, want)
	}
	if got, want := DefaultPath(), filepath.Join(dir, "config", "procgraph", "config.yaml"); got != want {
		t.Errorf("DefaultPath = %s, want %s", got, want)
	}
}

func TestLoadFromReader(t *testing.T) {
	clearEnv(t)
	const doc = `
sampling:
  interval: 250ms
  history: 30
log:
  level: debug
display:
  tab: network
  palette: ["#ff0000", "#00ff00"]
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Sampling.Interval.Duration != 250*time.Millisecond {
		t.Errorf("Interval = %s, want 250ms", cfg.Sampling.Interval)
	}
	if cfg.Sampling.History != 30 {
		t.Errorf("History = %d, want 30", cfg.Sampling.History)
	}
	if cfg.Sampling.DiskPath != "/" {
		t.Errorf("DiskPath = %q, default should survive", cfg.Sampling.DiskPath)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Display.Tab != "network" || len(cfg.Display.Palette) != 2 {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if !cfg.Display.PerCore {
		t.Error("PerCore default should survive a partial display section")
	}
}

func TestLoadFromReaderEmpty(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if cfg.Sampling.History != 120 {
		t.Errorf("History = %d, want default", cfg.Sampling.History)
	}
}

func TestLoadFromReaderInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "sampling: [\n"},
		{"bad duration", "sampling:\n  interval: soon\n"},
		{"bad history", "sampling:\n  history: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromReader(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for non-existent file: %v", err)
	}
	if cfg.Sampling.Interval.Duration != time.Second {
		t.Errorf("expected defaults, got %+v", cfg.Sampling)
	}
}

func TestSaveAndReload(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sampling.Interval = Duration{2 * time.Second}
	cfg.Display.Tab = "memory"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "interval: 2s") {
		t.Errorf("interval not written as a string:\n%s", data)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Sampling.Interval.Duration != 2*time.Second || loaded.Display.Tab != "memory" {
		t.Errorf("reloaded = %+v", loaded)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvInterval, "5s")
	t.Setenv(EnvHistory, "10")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := LoadFromReader(strings.NewReader("sampling:\n  interval: 1s\n  history: 99\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Interval.Duration != 5*time.Second {
		t.Errorf("Interval = %s, want env value 5s", cfg.Sampling.Interval)
	}
	if cfg.Sampling.History != 10 {
		t.Errorf("History = %d, want env value 10", cfg.Sampling.History)
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("level = %v, want warn", cfg.SlogLevel())
	}
}

func TestEnvOverridesInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHistory, "lots")
	if _, err := LoadFromReader(strings.NewReader("")); err == nil {
		t.Error("expected error for non-numeric history")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Sampling.Interval = Duration{} }},
		{"negative interval", func(c *Config) { c.Sampling.Interval = Duration{-time.Second} }},
		{"zero history", func(c *Config) { c.Sampling.History = 0 }},
		{"history above limit", func(c *Config) { c.Sampling.History = MaxHistory + 1 }},
		{"huge history", func(c *Config) { c.Sampling.History = 1_000_000_000 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad tab", func(c *Config) { c.Display.Tab = "gpu" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil || d.Duration != 90*time.Second {
		t.Errorf("UnmarshalText = %v, %v", d.Duration, err)
	}
	if err := d.UnmarshalText(nil); err != nil || d.Duration != 0 {
		t.Errorf("UnmarshalText empty = %v, want 0", d.Duration)
	}
	if err := d.UnmarshalText([]byte("x")); err == nil {
		t.Error("expected parse error")
	}
	b, _ := Duration{1500 * time.Millisecond}.MarshalText()
	if string(b) != "1.5s" {
		t.Errorf("MarshalText = %s, want 1.5s", b)
	}
}
