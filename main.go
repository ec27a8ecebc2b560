// procgraph draws live resource-usage graphs in the terminal.
//
// It samples CPU (total and per core), memory, swap, disk and network
// counters on a fixed clock, keeps a rolling window of each, and redraws the
// graphs after every sample.
//
// Usage:
//
//	procgraph [flags]
//
// Flags:
//
//	-config string      Path to configuration file (default: ~/.config/procgraph/config.yaml)
//	-interval duration  Sampling interval (overrides config)
//	-history int        Samples kept per graph (overrides config)
//	-view string        Initial view: overview|cpu|memory|network
//	-log-file string    Log file path (overrides config)
//	-record int         Take N samples without the TUI, print the graph and exit
//	-png string         With -record, also save the graph as an image
//	-export-dir string  Directory for PNG exports from the TUI
//	-keys               Print key bindings and exit
//	-verbose            Enable debug logging
//	-version            Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/procgraph/collectors"
	"gitlab.com/tinyland/lab/procgraph/collectors/retry"
	"gitlab.com/tinyland/lab/procgraph/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/procgraph/config"
	"gitlab.com/tinyland/lab/procgraph/display/color"
	"gitlab.com/tinyland/lab/procgraph/display/tui"
)

// overrides holds command-line values that take precedence over the config
// file. Zero values leave the config untouched.
type overrides struct {
	interval time.Duration
	history  int
	view     string
	logFile  string
	verbose  bool
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: "+config.DefaultPath()+")")
		interval    = flag.Duration("interval", 0, "Sampling interval (overrides config)")
		historyLen  = flag.Int("history", 0, "Samples kept per graph (overrides config)")
		view        = flag.String("view", "", "Initial view: overview|cpu|memory|network")
		logFile     = flag.String("log-file", "", "Log file path (overrides config)")
		record      = flag.Int("record", 0, "Take N samples without the TUI, print the graph and exit")
		pngPath     = flag.String("png", "", "With -record, also save the graph as an image")
		exportDir   = flag.String("export-dir", "", "Directory for PNG exports from the TUI")
		showKeys    = flag.Bool("keys", false, "Print key bindings and exit")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("procgraph %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}
	if *showKeys {
		fmt.Print(tui.DefaultRegistry().FormatTable())
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, overrides{
		interval: *interval,
		history:  *historyLen,
		view:     *view,
		logFile:  *logFile,
		verbose:  *verbose,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := openLogger(cfg.Log.File, cfg.SlogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v (logging disabled)\n", err)
	}
	defer closer.Close()

	palette, err := color.ParsePalette(cfg.Display.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
		os.Exit(1)
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	sampleEvery := cfg.Sampling.Interval.Duration
	sys := sysmetrics.New(sampleEvery, logger)
	sys.SetDiskPath(cfg.Sampling.DiskPath)

	registry := collectors.NewRegistry()
	registry.Register(retry.New(sys, retry.Config{Logger: logger}))

	// The first sample seeds the delta counters and tells us the core count.
	cores := seedCores(ctx, sys, logger)

	logger.Info("procgraph starting",
		"version", version,
		"interval", sampleEvery,
		"history", cfg.Sampling.History,
		"cores", cores,
	)

	// ---------------------------------------------------------------
	// Record mode
	// ---------------------------------------------------------------

	if *record > 0 {
		color.Apply()
		rec, err := newRecorder(registry, sampleEvery, cfg.Sampling.History, palette, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
			os.Exit(1)
		}
		if err := rec.run(ctx, *record); err != nil {
			fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
			os.Exit(1)
		}
		width, _ := color.TerminalSize()
		out, err := rec.render(width, recordHeight)
		if err != nil {
			fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		if *pngPath != "" {
			if err := rec.savePNG(*pngPath); err != nil {
				fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", *pngPath)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// TUI mode
	// ---------------------------------------------------------------

	if !cfg.Display.PerCore {
		cores = 0
	}
	model, err := tui.NewModel(tui.Options{
		Registry:    registry,
		Interval:    sampleEvery,
		History:     cfg.Sampling.History,
		Cores:       cores,
		DiskPath:    cfg.Sampling.DiskPath,
		Palette:     palette,
		InitialView: cfg.Display.Tab,
		ExportDir:   *exportDir,
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
		os.Exit(1)
	}
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "procgraph: TUI error: %v\n", err)
		os.Exit(1)
	}
	if err := model.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "procgraph: %v\n", err)
		os.Exit(1)
	}
	logger.Info("procgraph exiting")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

// applyOverrides layers command-line values over cfg.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.interval != 0 {
		cfg.Sampling.Interval = config.Duration{Duration: o.interval}
	}
	if o.history != 0 {
		cfg.Sampling.History = o.history
	}
	if o.view != "" {
		cfg.Display.Tab = o.view
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openLogger returns a text logger appending to path. The TUI owns the
// terminal, so there is no stderr fallback: on failure the returned logger
// discards everything.
func openLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path == "" {
		return discard, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return discard, nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return discard, nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// seedCores takes one sample so later deltas are meaningful and returns the
// number of cores it saw. Zero means the core count is unknown.
func seedCores(ctx context.Context, c collectors.Collector, logger *slog.Logger) int {
	result, err := c.Collect(ctx)
	if err != nil {
		logger.Warn("seed sample failed", "error", err)
		return 0
	}
	for _, w := range result.Warnings {
		logger.Warn("seed sample warning", "warning", w)
	}
	if s, ok := result.Data.(*sysmetrics.Sample); ok {
		return s.Cores()
	}
	return 0
}
