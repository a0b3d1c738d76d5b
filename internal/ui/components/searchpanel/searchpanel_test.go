package searchpanel

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focused(t *testing.T) Model {
	t.Helper()
	m, _ := New(DefaultKeyMap()).
		SetColumns([]string{"name", "level", "guild"}, "name").
		SetEnabled(true).
		Focus()
	return m
}

func exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestSubmitCarriesColumnAndTerm(t *testing.T) {
	m := focused(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bob")})
	assert.Equal(t, "bob", m.Value())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SubmitMsg{Column: "name", Term: "bob"}, exec(cmd))
}

func TestEmptyTermStillSubmits(t *testing.T) {
	_, cmd := focused(t).Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, SubmitMsg{Column: "name", Term: ""}, exec(cmd))
}

func TestDisabledDoesNotSubmit(t *testing.T) {
	m := focused(t).SetEnabled(false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, exec(cmd))
	assert.Contains(t, m.View(), "Select an entry")
}

func TestCycleColumns(t *testing.T) {
	m := focused(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ColumnChangedMsg{Column: "level"}, exec(cmd))

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, ColumnChangedMsg{Column: "guild"}, exec(cmd))

	// the selection only moves when the owner feeds it back
	assert.Equal(t, "name", m.Column())
	m = m.SetColumns([]string{"name", "level", "guild"}, "guild")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ColumnChangedMsg{Column: "name"}, exec(cmd))
}

func TestCycleWithOneColumn(t *testing.T) {
	m := focused(t).SetColumns([]string{"name"}, "name")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
}

func TestIgnoresInputWhenBlurred(t *testing.T) {
	m := focused(t).Blur()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.Value())
}

func TestView(t *testing.T) {
	m := focused(t).SetValue("50")
	view := m.View()
	require.NotEmpty(t, view)
	assert.Contains(t, view, "name")
	assert.Contains(t, view, "50")
	assert.Contains(t, view, "Search")

	assert.Contains(t, focused(t).SetColumns(nil, "").View(), "(any)")
}
