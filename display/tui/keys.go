package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the TUI application.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	Pause   key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Export  key.Binding
	Help    key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextTab, k.Pause, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Pause, k.Grow, k.Shrink, k.Export},
		{k.Help, k.Quit},
	}
}

// tabKeys maps the number keys to view positions.
func (k keyMap) tabKeys() []key.Binding {
	return []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.Tab4}
}

// keys holds the default key bindings used by the application.
var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next view")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev view")),
	Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
	Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "cpu")),
	Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "memory")),
	Tab4:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "network")),
	Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "pause")),
	Grow:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "longer window")),
	Shrink:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "shorter window")),
	Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
