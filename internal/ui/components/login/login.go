// Package login is the username/password form shown while logged out.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SubmitMsg carries the credentials to exchange for a token
type SubmitMsg struct {
	Username string
	Password string
}

// Styles for the form
type Styles struct {
	Box     lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
	Spinner lipgloss.Style
}

// DefaultStyles returns Nord styling
func DefaultStyles() Styles {
	return Styles{
		Box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#8FBCBB")).Padding(1, 3),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#88C0D0")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1")).Width(10),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4C566A")).Italic(true),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("#8FBCBB")),
	}
}

const (
	fieldUsername = iota
	fieldPassword
)

// Model is the login form
type Model struct {
	title   string
	inputs  []textinput.Model
	focus   int
	busy    bool
	err     string
	spinner spinner.Model
	styles  Styles
}

// New creates a form; username pre-fills the first field
func New(title, username string) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 128
	user.Width = 30
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.Width = 30
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		title:   title,
		inputs:  []textinput.Model{user, pass},
		spinner: s,
		styles:  DefaultStyles(),
	}
	if username != "" {
		m.focus = fieldPassword
	}
	return m
}

// SetStyles sets custom styles
func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	m.spinner.Style = s.Spinner
	return m
}

// Init focuses the active field
func (m Model) Init() tea.Cmd {
	return m.inputs[m.focus].Focus()
}

// Reset clears the password and error and refocuses the form
func (m Model) Reset() (Model, tea.Cmd) {
	m.busy = false
	m.err = ""
	m.inputs[fieldPassword].SetValue("")
	return m.focusField(m.focus)
}

// SetBusy marks a login request in flight
func (m Model) SetBusy(busy bool) (Model, tea.Cmd) {
	m.busy = busy
	if busy {
		m.err = ""
		return m, m.spinner.Tick
	}
	return m, nil
}

// SetError shows msg under the form and ends the busy state
func (m Model) SetError(msg string) Model {
	m.busy = false
	m.err = msg
	return m
}

// Busy reports whether a login is in flight
func (m Model) Busy() bool { return m.busy }

// Err returns the message shown under the form
func (m Model) Err() string { return m.err }

// Username returns the username field
func (m Model) Username() string { return m.inputs[fieldUsername].Value() }

func (m Model) focusField(i int) (Model, tea.Cmd) {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m, cmd
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return m.focusField((m.focus + 1) % len(m.inputs))
		case "enter":
			if m.focus == fieldUsername && m.inputs[fieldPassword].Value() == "" {
				return m.focusField(fieldPassword)
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()
	if username == "" || password == "" {
		m.err = "Username and password are required."
		return m, nil
	}
	sub := SubmitMsg{Username: username, Password: password}
	return m, func() tea.Msg { return sub }
}

// View renders the form box
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render("Username") + m.inputs[fieldUsername].View())
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Password") + m.inputs[fieldPassword].View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Logging in...")
	case m.err != "":
		b.WriteString(m.styles.Error.Render(m.err))
	default:
		b.WriteString(m.styles.Hint.Render("tab to switch fields, enter to log in"))
	}

	return m.styles.Box.Render(b.String())
}
