package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/gamedash/internal/ui/icons"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.appState {
	case StateCheckingSession:
		status := lipgloss.NewStyle().Foreground(AccentColor()).Bold(true).Render("Checking session...")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, status)
	case StateLoggedOut:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.login.View())
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		m.views[m.active].View(),
		m.renderStatusBar(),
		m.renderHelp(),
	)

	// Popups, bottom to top
	main = m.help.RenderOverlay(main)
	main = m.detail.RenderOverlay(main)
	if m.showHistory {
		main = overlay.Composite(m.renderHistoryPopup(), main, overlay.Center, overlay.Center, 0, 0)
	}
	return main
}

func (m Model) renderHeader() string {
	name := m.user.Username
	if name == "" {
		name = "user"
	}
	welcome := WelcomeStyle.Render(fmt.Sprintf("%s Welcome, %s!", icons.IconUser, name))
	clock := ClockStyle.Render(fmt.Sprintf("%s %s", icons.IconClock, m.now.Format("2006-01-02 15:04:05")))

	gap := max(1, m.width-lipgloss.Width(welcome)-lipgloss.Width(clock))
	return HeaderStyle.Render(welcome + strings.Repeat(" ", gap) + clock)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.views))
	for i, v := range m.views {
		kind := v.Kind()
		label := fmt.Sprintf("%d %s %s", i+1, icons.ForKind(string(kind)), kind.Title())
		if i == m.active {
			tabs[i] = TabActiveStyle.Render(label)
		} else {
			tabs[i] = TabInactiveStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m Model) renderHistoryPopup() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(AccentColor()).Render("Search History")
	hint := MetaStyle.Render("enter rerun · space details · d delete · / filter · esc close")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.historyFilter.View(), "", m.historyList.View(), "", hint)
	return PopupStyle.Background(PopupBg()).Render(content)
}
