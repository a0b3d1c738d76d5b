// internal/ui/model.go
// Root Model struct, constructor, and Init -- following superfile split pattern
package ui

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/session"
	"github.com/nhath/gamedash/internal/ui/components/historylist"
	"github.com/nhath/gamedash/internal/ui/components/login"
	"github.com/nhath/gamedash/internal/ui/components/popup"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
	eztable "github.com/nhath/gamedash/internal/ui/components/table"
	"github.com/nhath/gamedash/internal/ui/highlight"
)

// Options wires the root model
type Options struct {
	Config  *config.Config
	Profile *config.Profile
	Backend Backend
	// History is optional; nil disables recording and the history popup
	History *history.Store
	Logger  *slog.Logger
}

// Model is the root Bubble Tea model
type Model struct {
	// App state
	appState AppState

	// Core state
	width, height int
	config        *config.Config
	profile       *config.Profile
	backend       Backend
	historyStore  *history.Store
	logger        *slog.Logger

	// Session
	login login.Model
	user  session.User
	now   time.Time

	// One view per entity kind, in gateway.Kinds order
	views  []searchview.Model
	active int

	// Popup state
	popupStack    *PopupStack
	detail        popup.Model
	detailJSON    string
	help          popup.Model
	historyList   historylist.Model
	historyFilter textinput.Model
	showHistory   bool

	// Status
	statusMsg string
	errorMsg  string
}

// NewModel creates the root model
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	profile := opts.Profile
	if profile == nil {
		profile = &config.Profile{Name: "default"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	InitStyles(cfg.Theme)
	eztable.Init(cfg.Theme)
	highlight.SetStyle(highlight.DefaultStyle)

	popupStyles := popup.StylesFromTheme(cfg.Theme)

	m := Model{
		appState:     StateCheckingSession,
		width:        100,
		height:       30,
		config:       cfg,
		profile:      profile,
		backend:      opts.Backend,
		historyStore: opts.History,
		logger:       logger,
		login:        login.New("GameDash · "+profile.Display(), profile.Username).SetStyles(loginStyles(cfg.Theme)),
		now:          time.Now(),
		popupStack:   NewPopupStack(),
		detail:       popup.New().SetStyles(popupStyles),
		help:         popup.New().SetStyles(popupStyles),
		historyList:  historylist.New().SetStyles(historyStyles(cfg.Theme)),
	}
	m.historyFilter = newHistoryFilter()
	m.views = m.newViews()
	return m
}

func newHistoryFilter() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by entity, column or term"
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

// newViews builds a fresh tab per entity kind
func (m Model) newViews() []searchview.Model {
	keys := searchview.NewKeyMap(m.config.Keys)
	styles := searchview.StylesFromTheme(m.config.Theme)
	views := make([]searchview.Model, len(gateway.Kinds))
	for i, kind := range gateway.Kinds {
		views[i] = searchview.New(searchview.Options{
			Kind:     kind,
			Gateway:  m.backend,
			PageSize: m.config.PageSize,
			AutoList: kind == gateway.Tables,
			Keys:     keys,
			Styles:   styles,
		}).SetSize(m.width, m.viewHeight())
	}
	return views
}

// Init starts the session check and the clock
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkSessionCmd(),
		clockTickCmd(),
		m.login.Init(),
	)
}

// State returns the current application state
func (m Model) State() AppState {
	return m.appState
}

// ActiveKind returns the kind of the visible tab
func (m Model) ActiveKind() gateway.Kind {
	return m.views[m.active].Kind()
}

// viewIndex returns the position of the tab of kind, or -1
func (m Model) viewIndex(kind gateway.Kind) int {
	for i, v := range m.views {
		if v.Kind() == kind {
			return i
		}
	}
	return -1
}

// viewHeight is the space left for a tab below the header and tabs and
// above the status and help lines
func (m Model) viewHeight() int {
	return max(10, m.height-6)
}
