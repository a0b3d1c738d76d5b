package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) helpContent() string {
	var content strings.Builder
	keys := m.config.Keys

	// Section helper
	section := func(name string, bindings []struct{ key, desc string }) {
		header := lipgloss.NewStyle().Bold(true).Foreground(HighlightColor()).Render(name)
		content.WriteString(header + "\n")
		for _, b := range bindings {
			keyStyle := lipgloss.NewStyle().Foreground(SuccessColor()).Width(15)
			descStyle := lipgloss.NewStyle().Foreground(TextSecondary())
			content.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(b.key), descStyle.Render(b.desc)))
		}
		content.WriteString("\n")
	}

	section("Navigation", []struct{ key, desc string }{
		{"1 / 2 / 3", "Switch tab"},
		{"up/down", "Move in sidebar or table"},
		{strings.Join(keys.Sidebar, "/"), "Focus sidebar"},
		{strings.Join(keys.Search, "/"), "Focus search"},
		{strings.Join(keys.NextColumn, "/"), "Next column"},
		{strings.Join(keys.PrevColumn, "/"), "Previous column"},
	})

	section("Results", []struct{ key, desc string }{
		{strings.Join(keys.NextPage, "/"), "Next page"},
		{strings.Join(keys.PrevPage, "/"), "Previous page"},
		{strings.Join(keys.JumpPage, "/"), "Jump to page"},
		{strings.Join(keys.Refresh, "/"), "Refresh"},
		{strings.Join(keys.RowAction, "/"), "Record details"},
		{strings.Join(keys.Copy, "/"), "Copy record JSON"},
	})

	section("General", []struct{ key, desc string }{
		{strings.Join(keys.History, "/"), "Search history"},
		{strings.Join(keys.Help, "/"), "This help"},
		{strings.Join(keys.Logout, "/"), "Log out"},
		{strings.Join(keys.Exit, "/"), "Close popup"},
		{strings.Join(keys.Quit, "/"), "Quit"},
	})

	return strings.TrimRight(content.String(), "\n")
}
