// internal/history/entry.go
package history

import (
	"fmt"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is one executed search
type Entry struct {
	ID           int64
	ProfileName  string
	Kind         string // tables, players, backpacks
	EntityKey    string
	EntityLabel  string
	Column       string
	Term         string
	Page         int
	TotalPages   int
	RowCount     int
	DurationMs   int64
	Status       string `json:"status"` // "success", "error"
	ErrorMessage string `json:"error_message,omitempty"`
	ExecutedAt   time.Time
}

// Summary renders the entry as a single list line
func (e *Entry) Summary(maxLen int) string {
	label := e.EntityLabel
	if label == "" {
		label = e.EntityKey
	}
	s := fmt.Sprintf("%s/%s", e.Kind, label)
	switch {
	case e.Column != "" && e.Term != "":
		s += fmt.Sprintf(" %s~%q", e.Column, e.Term)
	case e.Term != "":
		s += fmt.Sprintf(" %q", e.Term)
	}
	if e.Page > 1 {
		s += fmt.Sprintf(" p%d", e.Page)
	}
	if maxLen > 3 && len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
