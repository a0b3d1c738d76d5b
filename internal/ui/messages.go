// internal/ui/messages.go
package ui

import (
	"time"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/session"
)

// SessionCheckedMsg is sent when the persisted token has been validated
type SessionCheckedMsg struct {
	User     session.User
	Restored bool // a token was found
	Err      error
}

// LoginResultMsg is sent when a login attempt completes
type LoginResultMsg struct {
	User session.User
	Err  error
}

// LoggedOutMsg is sent once the session has been torn down
type LoggedOutMsg struct {
	Forced bool
	Err    error
}

// ClockTickMsg drives the header clock
type ClockTickMsg time.Time

// EntitiesPreloadedMsg carries the sidebar lists fetched at dashboard start
type EntitiesPreloadedMsg struct {
	Tables     []gateway.Entity
	TablesErr  error
	Servers    []gateway.Entity
	ServersErr error
}

// HistoryLoadedMsg sent when history loads from SQLite
type HistoryLoadedMsg struct {
	Entries []history.Entry
	Err     error
}

// HistorySavedMsg sent after a search was recorded
type HistorySavedMsg struct {
	Err error
}

// ClipboardCopiedMsg is sent when clipboard copy completes
type ClipboardCopiedMsg struct {
	Text string
	Err  error
}
