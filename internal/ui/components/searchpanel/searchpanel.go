// Package searchpanel is the column selector, term input and submit action
// above a result table.
package searchpanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ColumnChangedMsg carries the column the user cycled to
type ColumnChangedMsg struct {
	Column string
}

// SubmitMsg asks the owner to run a search with the panel's column and term
type SubmitMsg struct {
	Column string
	Term   string
}

// KeyMap defines the panel bindings
type KeyMap struct {
	NextColumn key.Binding
	PrevColumn key.Binding
	Submit     key.Binding
}

// DefaultKeyMap returns tab, shift+tab and enter
func DefaultKeyMap() KeyMap {
	return NewKeyMap([]string{"tab"}, []string{"shift+tab"})
}

// NewKeyMap builds bindings from configured key names
func NewKeyMap(next, prev []string) KeyMap {
	return KeyMap{
		NextColumn: key.NewBinding(key.WithKeys(next...), key.WithHelp(strings.Join(next, "/"), "next column")),
		PrevColumn: key.NewBinding(key.WithKeys(prev...), key.WithHelp(strings.Join(prev, "/"), "previous column")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	}
}

// Styles for the panel
type Styles struct {
	Label    lipgloss.Style
	Column   lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style
}

// DefaultStyles returns Nord styling
func DefaultStyles() Styles {
	return Styles{
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1")),
		Column:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C")).Bold(true),
		Button:   lipgloss.NewStyle().Foreground(lipgloss.Color("#2E3440")).Background(lipgloss.Color("#88C0D0")).Padding(0, 1),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("#4C566A")).Faint(true),
	}
}

// Model renders the column list and selection it is given. Only the term
// text is held locally.
type Model struct {
	columns []string
	column  string
	enabled bool
	focused bool
	input   textinput.Model
	keys    KeyMap
	styles  Styles
}

// New creates a disabled panel
func New(keys KeyMap) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search term..."
	ti.CharLimit = 256
	ti.Width = 30
	return Model{keys: keys, input: ti, styles: DefaultStyles()}
}

// SetStyles sets custom styles
func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	m.input.PromptStyle = s.Label
	return m
}

// SetColumns sets the options and the selected column
func (m Model) SetColumns(columns []string, selected string) Model {
	m.columns = columns
	m.column = selected
	return m
}

// SetEnabled toggles whether submit is allowed; it follows entity selection
func (m Model) SetEnabled(enabled bool) Model {
	m.enabled = enabled
	return m
}

// SetValue replaces the term text
func (m Model) SetValue(term string) Model {
	m.input.SetValue(term)
	m.input.CursorEnd()
	return m
}

// SetWidth sets the input width
func (m Model) SetWidth(w int) Model {
	m.input.Width = max(10, w)
	return m
}

// Focus gives the term input keyboard focus
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m, m.input.Focus()
}

// Blur removes keyboard focus
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	return m
}

// Focused reports whether the panel has focus
func (m Model) Focused() bool { return m.focused }

// Enabled reports whether a submit would be emitted
func (m Model) Enabled() bool { return m.enabled }

// Value returns the term text
func (m Model) Value() string { return m.input.Value() }

// Column returns the selected column
func (m Model) Column() string { return m.column }

// KeyMap returns the bindings for help rendering
func (m Model) KeyMap() KeyMap { return m.keys }

// Update handles input while focused
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Submit):
			if !m.enabled {
				return m, nil
			}
			sub := SubmitMsg{Column: m.column, Term: m.input.Value()}
			return m, func() tea.Msg { return sub }
		case key.Matches(keyMsg, m.keys.NextColumn):
			return m, m.cycle(1)
		case key.Matches(keyMsg, m.keys.PrevColumn):
			return m, m.cycle(-1)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) cycle(step int) tea.Cmd {
	if len(m.columns) < 2 {
		return nil
	}
	idx := 0
	for i, c := range m.columns {
		if c == m.column {
			idx = i
			break
		}
	}
	idx = (idx + step + len(m.columns)) % len(m.columns)
	next := m.columns[idx]
	return func() tea.Msg { return ColumnChangedMsg{Column: next} }
}

// View renders the panel on one line
func (m Model) View() string {
	if !m.enabled {
		return m.styles.Disabled.Render("Select an entry from the list to search")
	}

	column := m.column
	if column == "" {
		column = "(any)"
	}
	parts := []string{
		m.styles.Label.Render("Column:"),
		" ",
		m.styles.Column.Render("‹ " + column + " ›"),
		"  ",
		m.input.View(),
		"  ",
		m.styles.Button.Render("⏎ Search"),
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
