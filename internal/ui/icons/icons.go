package icons

const (
	// Kind icons (Nerd Font)
	IconTables    = "󰓫"
	IconPlayers   = "󰀄"
	IconBackpacks = "󰏗"
	IconGeneric   = "󰆼"

	// Utility icons
	IconUser      = "󰀉"
	IconClock     = "󰥔"
	IconSuccess   = "✓"
	IconError     = "⚠"
	IconSelect    = "▸"
	IconBullet    = "•"
	IconSeparator = "  •  "
)

// ForKind returns the tab icon of an entity kind
func ForKind(kind string) string {
	switch kind {
	case "tables":
		return IconTables
	case "players":
		return IconPlayers
	case "backpacks":
		return IconBackpacks
	default:
		return IconGeneric
	}
}
