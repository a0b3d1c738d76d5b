// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/ui/components/historylist"
	"github.com/nhath/gamedash/internal/ui/components/login"
)

var (
	textPrimary   lipgloss.Color
	textSecondary lipgloss.Color
	textFaint     lipgloss.Color

	accentColor    lipgloss.Color
	successColor   lipgloss.Color
	errorColor     lipgloss.Color
	highlightColor lipgloss.Color
	warningColor   lipgloss.Color

	bgPrimary   lipgloss.Color
	bgSecondary lipgloss.Color
	cardBg      lipgloss.Color
	popupBg     lipgloss.Color
	borderColor lipgloss.Color
	selectedBg  lipgloss.Color

	// Styles
	StatusBarStyle   lipgloss.Style
	ModeStyle        lipgloss.Style
	ConnectionStyle  lipgloss.Style
	HeaderStyle      lipgloss.Style
	WelcomeStyle     lipgloss.Style
	ClockStyle       lipgloss.Style
	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
	MetaStyle        lipgloss.Style
	KeyStyle         lipgloss.Style
	SuccessStyle     lipgloss.Style
	ErrorStyle       lipgloss.Style
	WarningStyle     lipgloss.Style
	PopupStyle       lipgloss.Style
)

// Color getter functions for use in components
func TextPrimary() lipgloss.Color    { return textPrimary }
func TextSecondary() lipgloss.Color  { return textSecondary }
func TextFaint() lipgloss.Color      { return textFaint }
func AccentColor() lipgloss.Color    { return accentColor }
func SuccessColor() lipgloss.Color   { return successColor }
func ErrorColor() lipgloss.Color     { return errorColor }
func HighlightColor() lipgloss.Color { return highlightColor }
func WarningColor() lipgloss.Color   { return warningColor }
func BgPrimary() lipgloss.Color      { return bgPrimary }
func CardBg() lipgloss.Color         { return cardBg }
func PopupBg() lipgloss.Color        { return popupBg }
func SelectedBg() lipgloss.Color     { return selectedBg }

// InitStyles initializes the global styles based on the provided configuration theme
func InitStyles(theme config.Theme) {
	textPrimary = lipgloss.Color(theme.TextPrimary)
	textSecondary = lipgloss.Color(theme.TextSecondary)
	textFaint = lipgloss.Color(theme.TextFaint)

	accentColor = lipgloss.Color(theme.Accent)
	successColor = lipgloss.Color(theme.Success)
	errorColor = lipgloss.Color(theme.Error)
	highlightColor = lipgloss.Color(theme.Highlight)
	warningColor = lipgloss.Color(theme.Warning)

	bgPrimary = lipgloss.Color(theme.BgPrimary)
	bgSecondary = lipgloss.Color(theme.BgSecondary)
	cardBg = lipgloss.Color(theme.CardBg)
	popupBg = lipgloss.Color(theme.PopupBg)
	borderColor = lipgloss.Color(theme.BorderColor)
	selectedBg = lipgloss.Color(theme.SelectedBg)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(textPrimary).
		Background(bgSecondary)

	ModeStyle = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Background(successColor).
		Foreground(bgPrimary)

	ConnectionStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(cardBg).
		Foreground(textPrimary)

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor)

	WelcomeStyle = lipgloss.NewStyle().
		Foreground(textPrimary)

	ClockStyle = lipgloss.NewStyle().
		Foreground(textSecondary)

	TabActiveStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(successColor).
		Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
		Foreground(textFaint).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(borderColor).
		Padding(0, 1)

	MetaStyle = lipgloss.NewStyle().
		Foreground(textFaint).
		Italic(true)

	KeyStyle = lipgloss.NewStyle().
		Foreground(successColor)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	WarningStyle = lipgloss.NewStyle().
		Foreground(bgPrimary).
		Background(warningColor).
		Bold(true).
		Padding(0, 1)

	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlightColor).
		Padding(1, 2)
}

func loginStyles(t config.Theme) login.Styles {
	return login.Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Highlight)).
			Padding(1, 3),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextSecondary)).Width(10),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextFaint)).Italic(true),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Highlight)),
	}
}

func historyStyles(t config.Theme) historylist.Styles {
	faint := lipgloss.Color(t.TextFaint)
	return historylist.Styles{
		Item:        lipgloss.NewStyle().PaddingLeft(1),
		Selected:    lipgloss.NewStyle().PaddingLeft(1).Background(lipgloss.Color(t.SelectedBg)),
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		Meta:        lipgloss.NewStyle().Foreground(faint),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
		SuccessIcon: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		ErrorIcon:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
		Faint:       lipgloss.NewStyle().Foreground(faint),
	}
}
