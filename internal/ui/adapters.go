package ui

import (
	"fmt"
	"strings"

	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/ui/components/historylist"
)

// historyItem wraps a history.Entry to implement historylist.Item
type historyItem struct {
	entry history.Entry
}

func (a historyItem) ID() int64                   { return a.entry.ID }
func (a historyItem) Title(maxLen int) string     { return a.entry.Summary(maxLen) }
func (a historyItem) Status() string              { return a.entry.Status }
func (a historyItem) ErrorMessage() string        { return a.entry.ErrorMessage }
func (a historyItem) DurationMs() int64           { return a.entry.DurationMs }
func (a historyItem) RowCount() int               { return a.entry.RowCount }
func (a historyItem) ExecutedAtFormatted() string { return a.entry.ExecutedAt.Format("15:04:05") }

// Details lists the search parameters shown when the item is expanded
func (a historyItem) Details() string {
	e := a.entry
	column := e.Column
	if column == "" {
		column = "(any)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Entity: %s\n", e.EntityKey)
	fmt.Fprintf(&b, "Column: %s\n", column)
	fmt.Fprintf(&b, "Term:   %q\n", e.Term)
	fmt.Fprintf(&b, "Page:   %d of %d", e.Page, e.TotalPages)
	return b.String()
}

// toHistoryItems converts entries for the history list
func toHistoryItems(entries []history.Entry) []historylist.Item {
	items := make([]historylist.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e}
	}
	return items
}
