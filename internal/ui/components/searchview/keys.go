package searchview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/ui/components/pager"
	"github.com/nhath/gamedash/internal/ui/components/searchpanel"
)

// KeyMap defines the bindings of one search view
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Sidebar   key.Binding
	Search    key.Binding
	Refresh   key.Binding
	RowAction key.Binding
	Blur      key.Binding

	Pager pager.KeyMap
	Panel searchpanel.KeyMap
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
}

// NewKeyMap builds the bindings from the configured key names
func NewKeyMap(k config.KeyMap) KeyMap {
	return KeyMap{
		Up:        binding([]string{"up", "k"}, "up"),
		Down:      binding([]string{"down", "j"}, "down"),
		Select:    binding([]string{"enter"}, "select"),
		Sidebar:   binding(k.Sidebar, "focus list"),
		Search:    binding(k.Search, "focus search"),
		Refresh:   binding(k.Refresh, "refresh"),
		RowAction: binding(k.RowAction, "record details"),
		Blur:      binding([]string{"esc"}, "leave input"),
		Pager:     pager.NewKeyMap(k.NextPage, k.PrevPage, k.JumpPage),
		Panel:     searchpanel.NewKeyMap(k.NextColumn, k.PrevColumn),
	}
}

// DefaultKeyMap uses the default configuration bindings
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.DefaultConfig().Keys)
}
