// Package tui is procgraph's interactive dashboard.
//
// Both halves of the graph lifecycle run on the bubbletea event loop:
// Update installs each new sample through graph.Handle.Update and View draws
// through graph.Handle.Render. Collection itself runs in a tea.Cmd goroutine
// and only its result crosses into the loop, so no graph is touched from two
// goroutines. A borrow conflict on a graph is a programming error; the model
// records it, logs it and quits, and Err reports it to the caller.
package tui

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/disintegration/imaging"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/procgraph/collectors"
	"gitlab.com/tinyland/lab/procgraph/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/procgraph/config"
	"gitlab.com/tinyland/lab/procgraph/display/graph"
	"gitlab.com/tinyland/lab/procgraph/display/widgets"
	"gitlab.com/tinyland/lab/procgraph/internal/format"
)

// Window length limits for the grow and shrink keys. The upper one is the
// configuration limit.
const (
	MinHistory = 2
	MaxHistory = config.MaxHistory
)

// Exported images are this large.
const (
	exportWidth  = 800
	exportHeight = 300
)

// tabSparkWidth is the width of the sparkline next to each tab label.
const tabSparkWidth = 8

// Options configures a Model.
type Options struct {
	// Registry supplies the collectors sampled on every tick.
	Registry *collectors.Registry
	// Interval between samples.
	Interval time.Duration
	// History is the initial number of samples per graph.
	History int
	// Cores adds a per-core CPU graph when positive.
	Cores int
	// DiskPath labels the disk graph.
	DiskPath string
	// Palette overrides the graph colors.
	Palette []lipgloss.Color
	// InitialView names the view shown first. Empty means MainViewName.
	InitialView string
	// ExportDir receives PNG exports. Empty means the working directory.
	ExportDir string
	// Logger receives warnings and errors. Nil discards them.
	Logger *slog.Logger
}

// tickMsg fires when the next sample is due.
type tickMsg time.Time

// sampleMsg carries the results of one collection round.
type sampleMsg struct {
	results []*collectors.CollectResult
	errs    []error
}

// exportMsg reports the outcome of a PNG export.
type exportMsg struct {
	paths []string
	err   error
}

// Model is the top-level Bubbletea model for the procgraph TUI.
type Model struct {
	opts   Options
	logger *slog.Logger
	views  *Views
	active int

	cpu, cores, mem, disk, net graph.Handle
	hasCores                   bool

	width, height int
	ready         bool
	paused        bool
	help          help.Model
	zones         *zone.Manager

	lastSample time.Time
	samples    int
	status     string
	err        error
}

// ViewName maps a configured tab name to a view name.
func ViewName(tab string) string {
	if tab == "" || tab == "overview" {
		return MainViewName
	}
	return tab
}

// NewModel builds the graphs and views described by opts.
func NewModel(opts Options) (*Model, error) {
	if opts.Registry == nil {
		opts.Registry = collectors.NewRegistry()
	}
	if opts.Interval <= 0 {
		opts.Interval = opts.Registry.MinInterval(sysmetrics.DefaultInterval)
	}
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Model{
		opts:   opts,
		logger: logger,
		views:  NewViews(),
		help:   help.New(),
		zones:  zone.New(),
	}

	percent := func(title string) graph.Config {
		return graph.Config{
			Title:    title,
			History:  opts.History,
			Max:      100,
			Percent:  true,
			Format:   format.Percent,
			Interval: opts.Interval,
			Palette:  opts.Palette,
		}
	}

	var err error
	if m.cpu, err = connect(percent("CPU"), "total"); err != nil {
		return nil, err
	}
	if m.mem, err = connect(percent("Memory"), "ram", "swap"); err != nil {
		return nil, err
	}
	if m.disk, err = connect(percent("Disk "+opts.DiskPath), "used"); err != nil {
		return nil, err
	}
	netCfg := graph.Config{
		Title:    "Network",
		History:  opts.History,
		Format:   format.Rate,
		Interval: opts.Interval,
		Palette:  opts.Palette,
	}
	if m.net, err = connect(netCfg, "rx", "tx"); err != nil {
		return nil, err
	}
	if opts.Cores > 0 {
		labels := make([]string, opts.Cores)
		for i := range labels {
			labels[i] = fmt.Sprintf("cpu%d", i)
		}
		if m.cores, err = connect(percent("CPU per core"), labels...); err != nil {
			return nil, err
		}
		m.hasCores = true
	}

	cpuGraphs := []graph.Handle{m.cpu}
	if m.hasCores {
		cpuGraphs = append(cpuGraphs, m.cores)
	}
	for _, v := range []*View{
		{Name: MainViewName, Title: "Overview", Graphs: []graph.Handle{m.cpu, m.mem, m.net}},
		{Name: "cpu", Title: "CPU", Graphs: cpuGraphs},
		{Name: "memory", Title: "Memory", Graphs: []graph.Handle{m.mem, m.disk}},
		{Name: "network", Title: "Network", Graphs: []graph.Handle{m.net}},
	} {
		if err := m.views.Add(v); err != nil {
			return nil, err
		}
	}

	initial := ViewName(opts.InitialView)
	found := false
	for i, name := range m.views.Names() {
		if name == initial {
			m.active, found = i, true
		}
	}
	if !found {
		return nil, fmt.Errorf("tui: unknown view %q", opts.InitialView)
	}
	return m, nil
}

func connect(cfg graph.Config, labels ...string) (graph.Handle, error) {
	g, err := graph.New(cfg, labels...)
	if err != nil {
		return graph.Handle{}, fmt.Errorf("tui: %s graph: %w", cfg.Title, err)
	}
	return graph.Connect(g), nil
}

// Views returns the view registry.
func (m *Model) Views() *Views {
	return m.views
}

// Err returns the fatal error that stopped the model, if any.
func (m *Model) Err() error {
	return m.err
}

// Close releases the mouse zone tracker.
func (m *Model) Close() {
	m.zones.Close()
}

// Init implements tea.Model. The first sample is taken right away.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("procgraph"), m.collectCmd())
}

// handles returns every graph once, even those shown in several views.
func (m *Model) handles() []graph.Handle {
	hs := []graph.Handle{m.cpu, m.mem, m.disk, m.net}
	if m.hasCores {
		hs = append(hs, m.cores)
	}
	return hs
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd samples every registered collector in a background goroutine.
func (m *Model) collectCmd() tea.Cmd {
	all := m.opts.Registry.All()
	timeout := m.opts.Interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var msg sampleMsg
		for _, c := range all {
			r, err := c.Collect(ctx)
			if err != nil {
				msg.errs = append(msg.errs, fmt.Errorf("%s: %w", c.Name(), err))
				continue
			}
			msg.results = append(msg.results, r)
		}
		return msg
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case tickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, m.collectCmd()

	case sampleMsg:
		for _, err := range msg.errs {
			m.logger.Warn("collect failed", "error", err)
		}
		for _, r := range msg.results {
			for _, w := range r.Warnings {
				m.logger.Warn("collector warning", "collector", r.Collector, "warning", w)
			}
			s, ok := r.Data.(*sysmetrics.Sample)
			if !ok {
				continue
			}
			if err := m.apply(s); err != nil {
				return m.fail(err)
			}
		}
		return m, m.tickCmd()

	case exportMsg:
		if msg.err != nil {
			m.logger.Error("export failed", "error", msg.err)
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.logger.Info("exported graphs", "paths", msg.paths)
			m.status = fmt.Sprintf("exported %d png", len(msg.paths))
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			break
		}
		for i, name := range m.views.Names() {
			if m.zones.Get(tabZone(name)).InBounds(msg) {
				m.active = i
			}
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.views.Len()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextTab):
		m.active = (m.active + 1) % n
	case key.Matches(msg, keys.PrevTab):
		m.active = (m.active - 1 + n) % n
	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, keys.Grow):
		return m.resize(m.opts.History*2, true)
	case key.Matches(msg, keys.Shrink):
		return m.resize(m.opts.History/2, false)
	case key.Matches(msg, keys.Export):
		cmd, err := m.exportCmd()
		if err != nil {
			return m.fail(err)
		}
		return m, cmd
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		for i, b := range keys.tabKeys() {
			if i < n && key.Matches(msg, b) {
				m.active = i
			}
		}
	}
	return m, nil
}

// apply installs one sample into every graph.
func (m *Model) apply(s *sysmetrics.Sample) error {
	if err := m.cpu.Update(s.TotalCPU()); err != nil {
		return err
	}
	if m.hasCores {
		var cores []float64
		if len(s.CPU) > 1 {
			cores = s.CPU[1:]
		}
		if err := m.cores.Update(cores...); err != nil {
			return err
		}
	}
	if err := m.mem.Update(s.RAM, s.Swap); err != nil {
		return err
	}
	if err := m.disk.Update(s.Disk); err != nil {
		return err
	}
	if err := m.net.Update(s.RxRate, s.TxRate); err != nil {
		return err
	}
	m.lastSample = s.Time
	m.samples++
	return nil
}

// resize changes the window length of every graph, clamped to the limits.
// A window already outside the limits never moves against the key: growing
// only lengthens it and shrinking only shortens it.
func (m *Model) resize(n int, grow bool) (tea.Model, tea.Cmd) {
	if n < MinHistory {
		n = MinHistory
	}
	if n > MaxHistory {
		n = MaxHistory
	}
	if grow && n <= m.opts.History || !grow && n >= m.opts.History {
		return m, nil
	}
	for _, h := range m.handles() {
		if err := h.Resize(n); err != nil {
			return m.fail(err)
		}
	}
	m.opts.History = n
	m.status = "window " + format.WindowSpan(n, m.opts.Interval)
	return m, nil
}

// exportCmd rasterizes the active view's graphs on the event loop and
// writes the files in the background.
func (m *Model) exportCmd() (tea.Cmd, error) {
	v := m.activeView()
	imgs := make([]*image.NRGBA, 0, len(v.Graphs))
	for _, h := range v.Graphs {
		var img *image.NRGBA
		var ierr error
		if err := h.View(func(g graph.Reader) {
			img, ierr = g.Image(exportWidth, exportHeight)
		}); err != nil {
			return nil, err
		}
		if ierr != nil {
			return func() tea.Msg { return exportMsg{err: ierr} }, nil
		}
		imgs = append(imgs, img)
	}

	dir := m.opts.ExportDir
	stamp := time.Now().Format("20060102-150405")
	name := v.Name
	return func() tea.Msg {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return exportMsg{err: err}
			}
		}
		var paths []string
		for i, img := range imgs {
			p := filepath.Join(dir, fmt.Sprintf("procgraph-%s-%d-%s.png", name, i, stamp))
			if err := imaging.Save(img, p); err != nil {
				return exportMsg{paths: paths, err: err}
			}
			paths = append(paths, p)
		}
		return exportMsg{paths: paths}
	}, nil
}

// fail records a fatal error and stops the program.
func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	if m.err == nil {
		m.err = err
		m.logger.Error("graph access conflict", "error", err)
	}
	return m, tea.Quit
}

func (m *Model) activeView() *View {
	v, _ := m.views.Lookup(m.views.Names()[m.active])
	return v
}

func tabZone(name string) string {
	return "tab-" + name
}

// View implements tea.Model. It renders the tab bar, the active view, and
// the footer.
func (m *Model) View() string {
	if m.err != nil {
		return styleError.Render("procgraph: "+m.err.Error()) + "\n"
	}
	if !m.ready {
		return "Initializing..."
	}

	header, err := m.renderHeader()
	if err != nil {
		m.fail(err)
		return m.View()
	}
	footer := m.renderFooter()

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}
	content, err := m.activeView().Render(m.width, contentHeight)
	if err != nil {
		m.fail(err)
		return m.View()
	}

	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

// renderHeader renders the tab bar with the active view highlighted. Wide
// terminals get a sparkline of each view's first series.
func (m *Model) renderHeader() (string, error) {
	names := m.views.Names()
	showSpark := m.width >= len(names)*(tabSparkWidth+16)

	tabs := make([]string, 0, len(names))
	for i, name := range names {
		v, _ := m.views.Lookup(name)
		label := fmt.Sprintf("%d %s", i+1, v.Title)
		if showSpark && len(v.Graphs) > 0 {
			var spark string
			if err := v.Graphs[0].View(func(g graph.Reader) {
				spark = widgets.RenderSparkline(g.Series(0), widgets.SparklineConfig{
					Width: tabSparkWidth,
					Max:   g.Max(),
				})
			}); err != nil {
				return "", err
			}
			label += " " + spark
		}

		style := styleInactiveTab
		if i == m.active {
			style = styleActiveTab
		}
		tabs = append(tabs, m.zones.Mark(tabZone(name), style.Render(label)))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return styleHeader.Width(m.width).Render(bar), nil
}

// renderFooter renders the sampling status above the key help.
func (m *Model) renderFooter() string {
	var info []string
	if m.paused {
		info = append(info, stylePaused.Render("PAUSED"))
	}
	info = append(info, format.WindowSpan(m.opts.History, m.opts.Interval))
	if !m.lastSample.IsZero() {
		info = append(info, "updated "+m.lastSample.Format("15:04:05"))
	}
	if m.status != "" {
		info = append(info, m.status)
	}

	line := ansi.Truncate(styleFooter.Render(strings.Join(info, "  ")), m.width, "...")
	return lipgloss.JoinVertical(lipgloss.Left, line, m.help.View(keys))
}
