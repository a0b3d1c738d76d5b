package searchview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/ui/components/pager"
	"github.com/nhath/gamedash/internal/ui/components/searchpanel"
)

// Styles for the view and its children
type Styles struct {
	Sidebar        lipgloss.Style
	SidebarFocused lipgloss.Style
	Title          lipgloss.Style
	Item           lipgloss.Style
	ItemActive     lipgloss.Style
	Hint           lipgloss.Style
	Error          lipgloss.Style
	Spinner        lipgloss.Style

	Panel searchpanel.Styles
	Pager pager.Styles
}

// StylesFromTheme builds the view styles from the configured palette
func StylesFromTheme(t config.Theme) Styles {
	border := lipgloss.Color(t.BorderColor)
	highlight := lipgloss.Color(t.Highlight)
	faint := lipgloss.Color(t.TextFaint)

	return Styles{
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		SidebarFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Accent)),
		Item:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextPrimary)),
		ItemActive: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		Hint:       lipgloss.NewStyle().Foreground(faint).Italic(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true),
		Spinner:    lipgloss.NewStyle().Foreground(highlight),

		Panel: searchpanel.Styles{
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextSecondary)),
			Column:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
			Button:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgPrimary)).Background(lipgloss.Color(t.Accent)).Padding(0, 1),
			Disabled: lipgloss.NewStyle().Foreground(faint).Faint(true),
		},
		Pager: pager.Styles{
			Button:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),
			Disabled: lipgloss.NewStyle().Foreground(faint).Faint(true),
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextPrimary)),
		},
	}
}

// DefaultStyles uses the default Nord theme
func DefaultStyles() Styles {
	return StylesFromTheme(config.DefaultConfig().Theme)
}
