package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
)

const historyPageSize = 100

// loadHistoryCmd loads search history from SQLite, narrowed by the
// popup's filter when one is set
func (m Model) loadHistoryCmd() tea.Cmd {
	store, profile := m.historyStore, m.profile.Name
	filter := strings.TrimSpace(m.historyFilter.Value())
	return func() tea.Msg {
		var entries []history.Entry
		var err error
		if filter != "" {
			entries, err = store.Search(context.Background(), profile, filter, historyPageSize)
		} else {
			entries, err = store.List(context.Background(), profile, historyPageSize, 0)
		}
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// recordSearchCmd stores a settled search
func (m Model) recordSearchCmd(msg searchview.SearchSettledMsg) tea.Cmd {
	if m.historyStore == nil {
		return nil
	}
	store := m.historyStore
	entry := newHistoryEntry(m.profile.Name, msg)
	return func() tea.Msg {
		return HistorySavedMsg{Err: store.Add(context.Background(), &entry)}
	}
}

// deleteHistoryCmd removes one entry and reloads the list
func (m Model) deleteHistoryCmd(id int64) tea.Cmd {
	store := m.historyStore
	reload := m.loadHistoryCmd()
	return func() tea.Msg {
		if err := store.Delete(context.Background(), id); err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		return reload()
	}
}

func newHistoryEntry(profile string, msg searchview.SearchSettledMsg) history.Entry {
	e := history.Entry{
		ProfileName: profile,
		Kind:        string(msg.Kind),
		EntityKey:   msg.Target.Key,
		EntityLabel: msg.Target.Label,
		Column:      msg.Query.Column,
		Term:        msg.Query.Term,
		Page:        msg.Query.Page,
		TotalPages:  msg.Page.TotalPages,
		RowCount:    len(msg.Page.Rows),
		DurationMs:  msg.Elapsed.Milliseconds(),
		Status:      history.StatusSuccess,
	}
	if msg.Err != nil {
		e.Status = history.StatusError
		e.ErrorMessage = gateway.UserMessage(msg.Err)
	}
	return e
}
