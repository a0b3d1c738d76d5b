package historylist

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id     int64
	title  string
	status string
	errMsg string
}

func (i item) ID() int64                   { return i.id }
func (i item) Title(int) string            { return i.title }
func (i item) Details() string             { return fmt.Sprintf("details of %d", i.id) }
func (i item) Status() string              { return i.status }
func (i item) ErrorMessage() string        { return i.errMsg }
func (i item) DurationMs() int64           { return 12 }
func (i item) RowCount() int               { return 3 }
func (i item) ExecutedAtFormatted() string { return "10:00:00" }

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = item{id: int64(i + 1), title: fmt.Sprintf("search %d", i+1), status: "success"}
	}
	return out
}

func TestNavigation(t *testing.T) {
	m := New().SetSize(60, 20).SetItems(items(3))
	require.Equal(t, 3, m.Len())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.Selected(), "selection stops at the last item")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, int64(2), m.SelectedItem().ID())
}

func TestExpandShowsDetails(t *testing.T) {
	m := New().SetSize(60, 20).SetItems(items(2))
	assert.NotContains(t, m.View(), "details of 1")

	m = m.ToggleExpanded()
	assert.True(t, m.IsExpanded(1))
	assert.Contains(t, m.View(), "details of 1")
}

func TestRendersErrorsAndMeta(t *testing.T) {
	m := New().SetSize(60, 20).SetItems([]Item{
		item{id: 1, title: "players/Alpha", status: "error", errMsg: "Failed to fetch player data."},
	})
	view := m.View()
	assert.Contains(t, view, "players/Alpha")
	assert.Contains(t, view, "Failed to fetch player data.")
	assert.Contains(t, view, "12ms | 3 rows | 10:00:00")
}

func TestEmpty(t *testing.T) {
	m := New().SetItems(nil)
	assert.Nil(t, m.SelectedItem())
	assert.Contains(t, m.View(), "No searches yet.")
}

func TestSetItemsClampsSelection(t *testing.T) {
	m := New().SetSize(60, 20).SetItems(items(5))
	for range 4 {
		m = m.MoveDown()
	}
	m = m.SetItems(items(2))
	assert.Equal(t, 1, m.Selected())
}
