// Package popup provides a reusable modal popup component.
package popup

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/gamedash/internal/config"
)

// Styles for the popup
type Styles struct {
	Box    lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Footer lipgloss.Style
}

// DefaultStyles returns default styling
func DefaultStyles() Styles {
	return StylesFromTheme(config.DefaultConfig().Theme)
}

// StylesFromTheme builds popup styles from the configured palette
func StylesFromTheme(t config.Theme) Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Highlight)).
			Background(lipgloss.Color(t.PopupBg)).
			Padding(1, 2),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Accent)),
		Body: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextPrimary)),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.TextFaint)).
			Italic(true),
	}
}

// Model represents the popup state
type Model struct {
	visible   bool
	title     string
	content   string
	footer    string
	maxWidth  int
	maxHeight int
	screenW   int
	screenH   int
	viewport  viewport.Model
	styles    Styles
}

// New creates a new popup model
func New() Model {
	return Model{
		maxWidth:  100,
		maxHeight: 30,
		viewport:  viewport.New(96, 24),
		styles:    DefaultStyles(),
	}
}

// SetStyles sets custom styles
func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

// SetScreenSize sets the screen dimensions for sizing the box
func (m Model) SetScreenSize(w, h int) Model {
	m.screenW = w
	m.screenH = h
	m.maxWidth = max(20, min(100, w-4))
	m.maxHeight = max(8, h-4)
	m.resize()
	return m
}

// Show makes the popup visible with content
func (m Model) Show(title, content, footer string) Model {
	m.visible = true
	m.title = title
	m.content = content
	m.footer = footer
	m.resize()
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	return m
}

// Hide hides the popup
func (m Model) Hide() Model {
	m.visible = false
	return m
}

// Visible returns visibility state
func (m Model) Visible() bool {
	return m.visible
}

// Title returns the current title
func (m Model) Title() string {
	return m.title
}

// Content returns the unscrolled body
func (m Model) Content() string {
	return m.content
}

// resize fits the viewport inside the box: border and padding take 6 columns,
// and title and footer take their lines plus a blank separator each.
func (m *Model) resize() {
	chrome := 4
	if m.title != "" {
		chrome += 2
	}
	if m.footer != "" {
		chrome += 2
	}
	m.viewport.Width = m.maxWidth - 6
	m.viewport.Height = max(1, min(lipgloss.Height(m.content), m.maxHeight-chrome))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc":
			m.visible = false
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the popup box
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder

	if m.title != "" {
		b.WriteString(m.styles.Header.Render(m.title))
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Body.Render(m.viewport.View()))

	if m.footer != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Footer.Render(m.footer))
	}

	return m.styles.Box.
		Width(m.maxWidth).
		MaxHeight(m.maxHeight).
		Render(b.String())
}

// RenderOverlay renders the popup centered on top of main
func (m Model) RenderOverlay(main string) string {
	if !m.visible {
		return main
	}
	return overlay.Composite(m.View(), main, overlay.Center, overlay.Center, 0, 0)
}
