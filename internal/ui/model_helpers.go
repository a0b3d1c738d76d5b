// internal/ui/model_helpers.go
// Small helper functions used across the UI layer
package ui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// matchKey returns true if the key message matches any of the provided key strings
func matchKey(msg tea.KeyMsg, keys []string) bool {
	return slices.Contains(keys, msg.String())
}

// limitString truncates s to maxLen by replacing the middle with "..."
func limitString(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen < 5 {
		return s
	}
	half := (maxLen - 3) / 2
	return s[:half] + "..." + s[len(s)-half:]
}
