package ui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped out in tests
var writeClipboard = clipboard.WriteAll

// copyToClipboardCmd copies text to the system clipboard
func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return ClipboardCopiedMsg{Err: err}
		}
		return ClipboardCopiedMsg{Text: text}
	}
}

// clockTickCmd drives the header clock once per second
func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockTickMsg(t)
	})
}
