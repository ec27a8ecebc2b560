package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyCategory groups keybindings by function.
type KeyCategory string

const (
	CategoryNavigation KeyCategory = "navigation"
	CategorySampling   KeyCategory = "sampling"
	CategorySystem     KeyCategory = "system"
)

// KeyEntry is one keybinding with the group it is listed under.
type KeyEntry struct {
	Binding  key.Binding
	Category KeyCategory
}

// KeyRegistry lists every dashboard keybinding. It is built from the same
// bindings Update matches against, so the printed table cannot drift.
type KeyRegistry struct {
	Entries []KeyEntry
}

// DefaultRegistry returns the registry of the dashboard's bindings.
func DefaultRegistry() *KeyRegistry {
	var entries []KeyEntry
	add := func(cat KeyCategory, bs ...key.Binding) {
		for _, b := range bs {
			entries = append(entries, KeyEntry{Binding: b, Category: cat})
		}
	}
	add(CategoryNavigation, keys.NextTab, keys.PrevTab, keys.Tab1, keys.Tab2, keys.Tab3, keys.Tab4)
	add(CategorySampling, keys.Pause, keys.Grow, keys.Shrink, keys.Export)
	add(CategorySystem, keys.Help, keys.Quit)
	return &KeyRegistry{Entries: entries}
}

// ByCategory returns all entries matching the given category.
func (r *KeyRegistry) ByCategory(cat KeyCategory) []KeyEntry {
	var result []KeyEntry
	for _, e := range r.Entries {
		if e.Category == cat {
			result = append(result, e)
		}
	}
	return result
}

// Conflicts reports keys bound more than once. Empty means none.
func (r *KeyRegistry) Conflicts() []string {
	seen := make(map[string]string)
	var conflicts []string

	for _, e := range r.Entries {
		for _, k := range e.Binding.Keys() {
			if existing, ok := seen[k]; ok {
				conflicts = append(conflicts, fmt.Sprintf(
					"duplicate key %q: %s vs %s", k, existing, e.Binding.Help().Desc,
				))
			} else {
				seen[k] = e.Binding.Help().Desc
			}
		}
	}
	return conflicts
}

// FormatTable returns a formatted table of all keybindings by category.
func (r *KeyRegistry) FormatTable() string {
	var sb strings.Builder

	for _, cat := range []KeyCategory{CategoryNavigation, CategorySampling, CategorySystem} {
		entries := r.ByCategory(cat)
		if len(entries) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("\n%s:\n", strings.ToUpper(string(cat))))
		sb.WriteString(strings.Repeat("-", 40) + "\n")

		for _, e := range entries {
			keysStr := strings.Join(e.Binding.Keys(), ", ")
			sb.WriteString(fmt.Sprintf("  %-16s  %s\n", keysStr, e.Binding.Help().Desc))
		}
	}

	return sb.String()
}
