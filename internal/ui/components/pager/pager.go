// Package pager is the Previous / Page x of y / Next control under a result table.
package pager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PageChangeMsg asks the owner to load Page. It is only emitted for pages
// inside [1, total].
type PageChangeMsg struct {
	Page int
}

// KeyMap defines the pager bindings
type KeyMap struct {
	Next key.Binding
	Prev key.Binding
	Jump key.Binding
}

// DefaultKeyMap returns n/pgdown, b/pgup and g
func DefaultKeyMap() KeyMap {
	return NewKeyMap([]string{"n", "pgdown"}, []string{"b", "pgup"}, []string{"g"})
}

// NewKeyMap builds bindings from configured key names
func NewKeyMap(next, prev, jump []string) KeyMap {
	return KeyMap{
		Next: key.NewBinding(key.WithKeys(next...), key.WithHelp(strings.Join(next, "/"), "next page")),
		Prev: key.NewBinding(key.WithKeys(prev...), key.WithHelp(strings.Join(prev, "/"), "previous page")),
		Jump: key.NewBinding(key.WithKeys(jump...), key.WithHelp(strings.Join(jump, "/"), "go to page")),
	}
}

// Styles for the pager
type Styles struct {
	Button   lipgloss.Style
	Disabled lipgloss.Style
	Label    lipgloss.Style
}

// DefaultStyles returns Nord styling
func DefaultStyles() Styles {
	return Styles{
		Button:   lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0")).Bold(true),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("#4C566A")).Faint(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D8DEE9")),
	}
}

// Model is a controlled component: page and total come from the owner and
// the pager never changes them itself.
type Model struct {
	page    int
	total   int
	jumping bool
	input   textinput.Model
	keys    KeyMap
	styles  Styles
}

// New creates a pager on page 1 of 0
func New(keys KeyMap) Model {
	ti := textinput.New()
	ti.Prompt = "Go to page: "
	ti.CharLimit = 9
	ti.Width = 10
	return Model{page: 1, keys: keys, input: ti, styles: DefaultStyles()}
}

// SetStyles sets custom styles
func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

// SetPages updates the displayed position
func (m Model) SetPages(page, total int) Model {
	m.page = max(page, 1)
	m.total = max(total, 0)
	return m
}

// Page returns the displayed page
func (m Model) Page() int { return m.page }

// Total returns the displayed page count
func (m Model) Total() int { return m.total }

// CanPrev reports whether Previous is enabled
func (m Model) CanPrev() bool {
	return m.page > 1 && m.total > 0
}

// CanNext reports whether Next is enabled
func (m Model) CanNext() bool {
	return m.page < m.total
}

// Jumping reports whether the go-to-page prompt has focus
func (m Model) Jumping() bool {
	return m.jumping
}

// KeyMap returns the bindings for help rendering
func (m Model) KeyMap() KeyMap {
	return m.keys
}

// Update handles key presses
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.jumping {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.jumping {
		switch keyMsg.Type {
		case tea.KeyEnter:
			target, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			m = m.stopJump()
			if err != nil {
				return m, nil
			}
			return m, m.emit(target)
		case tea.KeyEsc:
			return m.stopJump(), nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Next):
		if m.CanNext() {
			return m, m.emit(m.page + 1)
		}
	case key.Matches(keyMsg, m.keys.Prev):
		if m.CanPrev() {
			return m, m.emit(m.page - 1)
		}
	case key.Matches(keyMsg, m.keys.Jump):
		if m.total > 1 {
			m.jumping = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m Model) stopJump() Model {
	m.jumping = false
	m.input.Blur()
	m.input.SetValue("")
	return m
}

// emit returns nil for out-of-range pages
func (m Model) emit(target int) tea.Cmd {
	if target < 1 || target > m.total {
		return nil
	}
	return func() tea.Msg { return PageChangeMsg{Page: target} }
}

// View renders the control
func (m Model) View() string {
	prev := m.styles.Button.Render("‹ Previous")
	if !m.CanPrev() {
		prev = m.styles.Disabled.Render("‹ Previous")
	}
	next := m.styles.Button.Render("Next ›")
	if !m.CanNext() {
		next = m.styles.Disabled.Render("Next ›")
	}
	label := m.styles.Label.Render(fmt.Sprintf("Page %d of %d", m.page, m.total))

	line := lipgloss.JoinHorizontal(lipgloss.Center, prev, "   ", label, "   ", next)
	if m.jumping {
		line += "   " + m.input.View()
	}
	return line
}
