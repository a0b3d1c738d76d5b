// internal/ui/app.go
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/session"
	"github.com/nhath/gamedash/internal/ui/components/login"
	"github.com/nhath/gamedash/internal/ui/components/pager"
	"github.com/nhath/gamedash/internal/ui/components/searchpanel"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
	"github.com/nhath/gamedash/internal/ui/highlight"
	"github.com/nhath/gamedash/internal/ui/icons"
)

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.views {
			m.views[i] = m.views[i].SetSize(m.width, m.viewHeight())
		}
		m.detail = m.detail.SetScreenSize(m.width, m.height)
		m.help = m.help.SetScreenSize(m.width, m.height)
		m.historyList = m.historyList.SetSize(min(100, m.width-8), max(5, m.height-12))
		return m, nil

	case ClockTickMsg:
		m.now = time.Time(msg)
		return m, clockTickCmd()

	case SessionCheckedMsg:
		if msg.Err == nil && msg.Restored {
			return m.enterDashboard(msg.User)
		}
		m.appState = StateLoggedOut
		if msg.Err != nil {
			text := gateway.UserMessage(msg.Err)
			if errors.Is(msg.Err, gateway.ErrUnauthorized) {
				text = sessionExpiredMessage
			}
			m.login = m.login.SetError(text)
		}
		return m, m.login.Init()

	case LoginResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.SetBusy(false)
		if msg.Err != nil {
			m.login = m.login.SetError(gateway.UserMessage(msg.Err))
			return m, cmd
		}
		m.login, _ = m.login.Reset()
		return m.enterDashboard(msg.User)

	case LoggedOutMsg:
		return m.leaveDashboard(msg)

	case EntitiesPreloadedMsg:
		if m.appState != StateDashboard {
			return m, nil
		}
		if unauthorized(msg.TablesErr, msg.ServersErr) {
			return m.expireSession()
		}
		var cmds []tea.Cmd
		for _, loaded := range msg.fanOut() {
			var cmd tea.Cmd
			m, cmd = m.routeToViews(loaded)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case searchview.EntitiesLoadedMsg:
		if m.appState != StateDashboard {
			return m, nil
		}
		if unauthorized(msg.Err) {
			return m.expireSession()
		}
		return m.routeToViews(msg)

	case searchview.ResponseMsg:
		if m.appState != StateDashboard {
			return m, nil
		}
		if unauthorized(msg.Response.Err) {
			return m.expireSession()
		}
		return m.routeToViews(msg)

	case searchview.SearchSettledMsg:
		m.errorMsg = ""
		if msg.Err != nil {
			m.statusMsg = ""
		} else {
			m.statusMsg = fmt.Sprintf("%s: %d rows in %dms", msg.Target.Label, len(msg.Page.Rows), msg.Elapsed.Milliseconds())
		}
		return m, m.recordSearchCmd(msg)

	case searchview.OpenRecordMsg:
		return m.openDetail(msg), nil

	case searchpanel.SubmitMsg, searchpanel.ColumnChangedMsg, pager.PageChangeMsg:
		return m.updateActive(msg)

	case login.SubmitMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.SetBusy(true)
		return m, tea.Batch(cmd, m.loginCmd(msg.Username, msg.Password))

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
		for i := range m.views {
			m.views[i], cmd = m.views[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.errorMsg = "History: " + msg.Err.Error()
			return m, nil
		}
		m.historyList = m.historyList.SetItems(toHistoryItems(msg.Entries))
		return m, nil

	case HistorySavedMsg:
		if msg.Err != nil {
			m.logger.Warn("record search", "err", msg.Err)
		}
		return m, nil

	case ClipboardCopiedMsg:
		if msg.Err != nil {
			m.errorMsg = "Copy failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blink and friends) goes to whatever holds focus
	switch m.appState {
	case StateLoggedOut:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case StateDashboard:
		if m.showHistory && m.historyFilter.Focused() {
			var cmd tea.Cmd
			m.historyFilter, cmd = m.historyFilter.Update(msg)
			return m, cmd
		}
		return m.updateActive(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.config.Keys
	if matchKey(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.appState {
	case StateLoggedOut:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case StateCheckingSession:
		return m, nil
	}

	// Popups take keys first, topmost first
	if m.showHistory {
		return m.handleHistoryKey(msg)
	}
	if m.detail.Visible() {
		switch {
		case matchKey(msg, keys.Copy):
			return m, copyToClipboardCmd(m.detailJSON)
		case matchKey(msg, keys.Exit):
			m.popupStack.CloseTop(&m)
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	if m.help.Visible() {
		if matchKey(msg, keys.Exit) {
			m.popupStack.CloseTop(&m)
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	// Printable keys belong to a focused input
	if m.views[m.active].InputFocused() && !strings.HasPrefix(msg.String(), "ctrl+") {
		return m.updateActive(msg)
	}

	switch {
	case matchKey(msg, keys.Help):
		m.help = m.help.Show("Keyboard Shortcuts", m.helpContent(), "esc close")
		m.popupStack.Push("help", func(m *Model) bool {
			m.help = m.help.Hide()
			return true
		})
		return m, nil
	case matchKey(msg, keys.History):
		return m.openHistory()
	case matchKey(msg, keys.Logout):
		m.statusMsg = "Logging out..."
		return m, m.logoutCmd()
	}

	if idx, ok := tabIndex(msg.String(), len(m.views)); ok {
		m.active = idx
		m.statusMsg = ""
		m.errorMsg = ""
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.config.Keys
	if m.historyFilter.Focused() {
		return m.handleHistoryFilterKey(msg)
	}
	switch {
	case matchKey(msg, keys.Search):
		return m, m.historyFilter.Focus()
	case matchKey(msg, keys.Exit):
		m.popupStack.CloseTop(&m)
		return m, nil
	case msg.String() == "enter":
		item, ok := m.historyList.SelectedItem().(historyItem)
		if !ok {
			return m, nil
		}
		m.popupStack.CloseTop(&m)
		return m.rerun(item.entry.Kind, item.entry.EntityKey, item.entry.Column, item.entry.Term)
	case msg.String() == "d":
		item, ok := m.historyList.SelectedItem().(historyItem)
		if !ok {
			return m, nil
		}
		return m, m.deleteHistoryCmd(item.entry.ID)
	}
	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

// handleHistoryFilterKey edits the filter; enter applies it and esc clears it
func (m Model) handleHistoryFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.historyFilter.Blur()
		return m, m.loadHistoryCmd()
	case "esc":
		m.historyFilter.Blur()
		m.historyFilter.SetValue("")
		return m, m.loadHistoryCmd()
	}
	var cmd tea.Cmd
	m.historyFilter, cmd = m.historyFilter.Update(msg)
	return m, cmd
}

// rerun switches to the entry's tab and repeats the search from page 1
func (m Model) rerun(kind, entityKey, column, term string) (tea.Model, tea.Cmd) {
	k, err := gateway.ParseKind(kind)
	if err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	idx := m.viewIndex(k)
	if idx < 0 {
		return m, nil
	}
	m.active = idx
	var cmd tea.Cmd
	m.views[idx], cmd = m.views[idx].Rerun(entityKey, column, term)
	return m, cmd
}

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	if m.historyStore == nil {
		m.errorMsg = "History is disabled"
		return m, nil
	}
	m.showHistory = true
	m.historyFilter.Reset()
	m.historyFilter.Blur()
	m.popupStack.Push("history", func(m *Model) bool {
		m.showHistory = false
		m.historyFilter.Blur()
		return true
	})
	return m, m.loadHistoryCmd()
}

func (m Model) openDetail(msg searchview.OpenRecordMsg) Model {
	var b strings.Builder
	for _, k := range msg.Record.Keys() {
		v, _ := msg.Record.Get(k)
		fmt.Fprintf(&b, "%s: %s\n", KeyStyle.Render(k), record.FormatValue(v))
	}
	m.detailJSON = record.Indent(msg.Record)
	b.WriteString("\n")
	b.WriteString(highlight.JSON(m.detailJSON))

	title := fmt.Sprintf("%s %s · %s", icons.ForKind(string(msg.Kind)), msg.Kind.Title(), msg.Target.Label)
	m.detail = m.detail.Show(title, b.String(), "y copy JSON · esc close")
	m.popupStack.Push("detail", func(m *Model) bool {
		m.detail = m.detail.Hide()
		return true
	})
	return m
}

// enterDashboard builds fresh tabs for the logged-in user
func (m Model) enterDashboard(user session.User) (tea.Model, tea.Cmd) {
	m.appState = StateDashboard
	m.user = user
	m.active = 0
	m.statusMsg = ""
	m.errorMsg = ""
	m.views = m.newViews()

	cmds := []tea.Cmd{m.preloadEntitiesCmd()}
	for _, v := range m.views {
		cmds = append(cmds, v.Tick())
	}
	return m, tea.Batch(cmds...)
}

// expireSession drops the session after the backend rejected the token
func (m Model) expireSession() (tea.Model, tea.Cmd) {
	m.appState = StateLoggedOut
	return m, m.forceLogoutCmd()
}

func (m Model) leaveDashboard(msg LoggedOutMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("end session", "err", msg.Err)
	}
	m.appState = StateLoggedOut
	m.user = session.User{}
	m.statusMsg = ""
	m.errorMsg = ""
	for m.popupStack.CloseTop(&m) {
	}
	m.views = m.newViews()

	var cmd tea.Cmd
	m.login, cmd = m.login.Reset()
	if msg.Forced {
		m.login = m.login.SetError(sessionExpiredMessage)
	}
	return m, cmd
}

// routeToViews hands a kind-tagged message to every tab; each tab ignores
// kinds other than its own
func (m Model) routeToViews(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for i := range m.views {
		var cmd tea.Cmd
		m.views[i], cmd = m.views[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.views[m.active], cmd = m.views[m.active].Update(msg)
	return m, cmd
}

// tabIndex maps "1".."n" to a tab
func tabIndex(s string, n int) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	idx := int(s[0] - '1')
	return idx, idx < n
}
