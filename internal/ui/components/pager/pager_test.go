package pager

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Msg) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestButtonsState(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		total      int
		prev, next bool
	}{
		{"no results", 1, 0, false, false},
		{"single page", 1, 1, false, false},
		{"first of many", 1, 5, false, true},
		{"middle", 3, 5, true, true},
		{"last", 5, 5, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(DefaultKeyMap()).SetPages(tt.page, tt.total)
			assert.Equal(t, tt.prev, m.CanPrev())
			assert.Equal(t, tt.next, m.CanNext())
		})
	}
}

func TestNextPrevEmitInRange(t *testing.T) {
	m := New(DefaultKeyMap()).SetPages(2, 3)

	_, msg := press(t, m, runes("n"))
	assert.Equal(t, PageChangeMsg{Page: 3}, msg)

	_, msg = press(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, PageChangeMsg{Page: 1}, msg)

	// controlled: the pager does not move by itself
	assert.Equal(t, 2, m.Page())
}

func TestNoEmitAtEdges(t *testing.T) {
	m := New(DefaultKeyMap()).SetPages(1, 1)
	_, msg := press(t, m, runes("n"))
	assert.Nil(t, msg)
	_, msg = press(t, m, runes("b"))
	assert.Nil(t, msg)

	m = New(DefaultKeyMap()).SetPages(1, 0)
	_, msg = press(t, m, runes("n"))
	assert.Nil(t, msg)
}

func TestJump(t *testing.T) {
	m := New(DefaultKeyMap()).SetPages(1, 10)

	m, _ = m.Update(runes("g"))
	require.True(t, m.Jumping())
	m, _ = m.Update(runes("7"))
	m, msg := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Jumping())
	assert.Equal(t, PageChangeMsg{Page: 7}, msg)

	m, _ = m.Update(runes("g"))
	m, _ = m.Update(runes("4"))
	m, _ = m.Update(runes("2"))
	_, msg = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, msg, "42 is out of range")

	m, _ = m.Update(runes("g"))
	m, _ = m.Update(runes("x"))
	m, msg = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, msg, "not a number")
	assert.False(t, m.Jumping())

	m, _ = m.Update(runes("g"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Jumping())
}

func TestJumpNeedsSeveralPages(t *testing.T) {
	m := New(DefaultKeyMap()).SetPages(1, 1)
	m, _ = m.Update(runes("g"))
	assert.False(t, m.Jumping())
}

func TestView(t *testing.T) {
	view := New(DefaultKeyMap()).SetPages(2, 5).View()
	assert.Contains(t, view, "Previous")
	assert.Contains(t, view, "Page 2 of 5")
	assert.Contains(t, view, "Next")

	assert.Contains(t, New(DefaultKeyMap()).View(), "Page 1 of 0")
}
