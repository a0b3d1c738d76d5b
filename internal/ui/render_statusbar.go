package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/gamedash/internal/ui/icons"
)

func (m Model) renderStatusBar() string {
	var parts []string

	// 1. Active kind
	parts = append(parts, ModeStyle.Render(strings.ToUpper(string(m.ActiveKind()))))

	// 2. Backend
	if m.profile != nil {
		profileInfo := ConnectionStyle.Render(fmt.Sprintf(" %s ", m.profile.Name))
		host := lipgloss.NewStyle().Background(CardBg()).Foreground(TextPrimary()).
			Render(fmt.Sprintf(" %s ", limitString(m.profile.Display(), 30)))
		parts = append(parts, profileInfo+host)
	}

	// 3. Loading indicator
	if m.views[m.active].Loading() {
		loadingStyle := lipgloss.NewStyle().Foreground(AccentColor()).Padding(0, 1)
		parts = append(parts, loadingStyle.Render("Loading..."))
	}

	// 4. Status message (success/info)
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Background(SuccessColor()).Foreground(BgPrimary()).Padding(0, 1)
		parts = append(parts, statusStyle.Render(icons.IconSuccess+" "+m.statusMsg))
	}

	// 5. Error indicator
	if m.errorMsg != "" {
		errorStyle := lipgloss.NewStyle().Background(ErrorColor()).Foreground(TextPrimary()).Padding(0, 1)
		truncated := m.errorMsg
		if len(truncated) > 60 {
			truncated = truncated[:57] + "..."
		}
		parts = append(parts, errorStyle.Render(icons.IconError+" "+truncated))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	return StatusBarStyle.Width(m.width).Render(content)
}

// renderHelp renders the one-line key hint under the status bar
func (m Model) renderHelp() string {
	k := m.config.Keys
	hints := []struct{ key, desc string }{
		{"1-3", "tabs"},
		{strings.Join(k.Sidebar, "/"), "sidebar"},
		{strings.Join(k.Search, "/"), "search"},
		{strings.Join(k.NextPage, "/"), "next"},
		{strings.Join(k.PrevPage, "/"), "prev"},
		{strings.Join(k.RowAction, "/"), "details"},
		{strings.Join(k.History, "/"), "history"},
		{strings.Join(k.Help, "/"), "help"},
		{strings.Join(k.Quit, "/"), "quit"},
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = KeyStyle.Render(h.key) + " " + MetaStyle.Render(h.desc)
	}
	return strings.Join(parts, MetaStyle.Render(icons.IconSeparator))
}
