// Package searchview binds a search.View to Bubble Tea: an entity sidebar,
// the search panel, the result table and the pager for one entity kind.
package searchview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	bbtable "github.com/evertras/bubble-table/table"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/search"
	"github.com/nhath/gamedash/internal/ui/components/pager"
	"github.com/nhath/gamedash/internal/ui/components/searchpanel"
	eztable "github.com/nhath/gamedash/internal/ui/components/table"
)

// Gateway is what a view needs from the backend client
type Gateway interface {
	ListEntities(ctx context.Context, kind gateway.Kind) ([]gateway.Entity, error)
	Source(kind gateway.Kind) search.Source
}

// EntitiesLoadedMsg delivers the sidebar list of one kind
type EntitiesLoadedMsg struct {
	Kind     gateway.Kind
	Entities []gateway.Entity
	Err      error
}

// ResponseMsg delivers a settled request of one kind's view
type ResponseMsg struct {
	Kind     gateway.Kind
	Response search.Response
	Elapsed  time.Duration
}

// SearchSettledMsg is emitted after a search response was applied
type SearchSettledMsg struct {
	Kind    gateway.Kind
	Target  search.Target
	Query   search.Query
	Page    search.Page
	Err     error
	Elapsed time.Duration
}

// OpenRecordMsg asks the owner to show one record in detail
type OpenRecordMsg struct {
	Kind   gateway.Kind
	Target search.Target
	Record record.Record
}

// Focus is the part of the view receiving keys
type Focus int

const (
	FocusSidebar Focus = iota
	FocusPanel
	FocusTable
)

const sidebarWidth = 30

type rerun struct {
	column string
	term   string
}

// Options configures a view
type Options struct {
	Kind     gateway.Kind
	Gateway  Gateway
	PageSize int
	// AutoList lists page 1 unfiltered as soon as the columns load
	AutoList bool
	Keys     KeyMap
	Styles   Styles
}

// Model is one tab of the dashboard
type Model struct {
	kind     gateway.Kind
	gw       Gateway
	view     *search.View
	autoList bool
	keys     KeyMap
	styles   Styles

	entities        []gateway.Entity
	entitiesLoaded  bool
	entitiesLoading bool
	entitiesErr     error
	cursor          int

	panel   searchpanel.Model
	pager   pager.Model
	table   bbtable.Model
	spinner spinner.Model
	focus   Focus

	pending *rerun
	notice  string

	width  int
	height int
}

// New creates a view with nothing selected
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = opts.Styles.Spinner

	return Model{
		kind:     opts.Kind,
		gw:       opts.Gateway,
		view:     search.New(opts.PageSize),
		autoList: opts.AutoList,
		keys:     opts.Keys,
		styles:   opts.Styles,
		panel:    searchpanel.New(opts.Keys.Panel).SetStyles(opts.Styles.Panel),
		pager:    pager.New(opts.Keys.Pager).SetStyles(opts.Styles.Pager),
		table:    eztable.New(nil),
		spinner:  s,
		width:    80,
		height:   24,

		entitiesLoading: true,
	}
}

// Kind returns the entity kind of the view
func (m Model) Kind() gateway.Kind { return m.kind }

// State exposes the underlying search state for rendering and tests
func (m Model) State() *search.View { return m.view }

// Entities returns the sidebar list
func (m Model) Entities() []gateway.Entity { return m.entities }

// Focus returns the focused part
func (m Model) Focus() Focus { return m.focus }

// InputFocused reports whether printable keys belong to a text input
func (m Model) InputFocused() bool {
	return m.focus == FocusPanel || m.pager.Jumping()
}

// Loading reports whether any request of this view is in flight
func (m Model) Loading() bool {
	return m.entitiesLoading || m.view.Loading()
}

// SetSize sets the area available to the view
func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	m.panel = m.panel.SetWidth(m.mainWidth() - 40)
	m.table = m.sizeTable(m.table)
	return m
}

// Init loads the sidebar
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.LoadEntities(), m.spinner.Tick)
}

// Tick starts the loading spinner without fetching anything
func (m Model) Tick() tea.Cmd {
	return m.spinner.Tick
}

// LoadEntities fetches the sidebar list
func (m Model) LoadEntities() tea.Cmd {
	gw, kind := m.gw, m.kind
	return func() tea.Msg {
		entities, err := gw.ListEntities(context.Background(), kind)
		return EntitiesLoadedMsg{Kind: kind, Entities: entities, Err: err}
	}
}

func (m Model) execute(req search.Request) tea.Cmd {
	src, kind := m.gw.Source(m.kind), m.kind
	return tea.Batch(func() tea.Msg {
		start := time.Now()
		resp := search.Execute(context.Background(), src, req)
		return ResponseMsg{Kind: kind, Response: resp, Elapsed: time.Since(start)}
	}, m.spinner.Tick)
}

// Select switches to the entity at idx of the sidebar
func (m Model) Select(idx int) (Model, tea.Cmd) {
	if idx < 0 || idx >= len(m.entities) {
		return m, nil
	}
	m.cursor = idx
	m.pending = nil
	m.notice = ""

	req := m.view.SelectEntity(m.entities[idx].Target())
	m.panel = m.panel.SetColumns(nil, "").SetValue("").SetEnabled(true)
	m.pager = m.pager.SetPages(1, 0)
	m.table = eztable.New(nil)

	var focusCmd tea.Cmd
	m.focus = FocusPanel
	m.panel, focusCmd = m.panel.Focus()
	return m, tea.Batch(m.execute(req), focusCmd)
}

// Rerun selects entityKey and searches column/term once its columns load
func (m Model) Rerun(entityKey, column, term string) (Model, tea.Cmd) {
	for i, e := range m.entities {
		if e.Key() != entityKey {
			continue
		}
		if t, ok := m.view.Target(); ok && t.Key == entityKey && m.view.Phase() != search.ColumnsLoading && len(m.view.Columns()) > 0 {
			// already selected; skip the column reload
			if !m.view.SetColumn(column) {
				column = m.view.Column()
			}
			return m.runSearch(column, term)
		}
		var cmd tea.Cmd
		m, cmd = m.Select(i)
		m.pending = &rerun{column: column, term: term}
		m.panel = m.panel.SetValue(term)
		return m, cmd
	}
	m.notice = fmt.Sprintf("%s %q is no longer available", m.kind.EntityNoun(), entityKey)
	return m, nil
}

func (m Model) runSearch(column, term string) (Model, tea.Cmd) {
	req, ok := m.view.RunSearch(column, term)
	if !ok {
		return m, nil
	}
	m.notice = ""
	m.panel = m.panel.SetColumns(m.view.Columns(), m.view.Column()).SetValue(term)
	m.panel = m.panel.Blur()
	m.focus = FocusTable
	return m, m.execute(req)
}

// Update handles messages addressed to this view
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EntitiesLoadedMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		m.entitiesLoading = false
		m.entitiesLoaded = true
		m.entitiesErr = msg.Err
		if msg.Err == nil {
			m.entities = msg.Entities
			m.cursor = min(m.cursor, max(len(m.entities)-1, 0))
		}
		return m, nil

	case ResponseMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		return m.applyResponse(msg)

	case searchpanel.ColumnChangedMsg:
		if m.view.SetColumn(msg.Column) {
			m.panel = m.panel.SetColumns(m.view.Columns(), m.view.Column())
		}
		return m, nil

	case searchpanel.SubmitMsg:
		return m.runSearch(msg.Column, msg.Term)

	case pager.PageChangeMsg:
		req, ok := m.view.ChangePage(msg.Page)
		if !ok {
			return m, nil
		}
		return m, m.execute(req)

	case spinner.TickMsg:
		if !m.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == FocusPanel {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyResponse(msg ResponseMsg) (Model, tea.Cmd) {
	resp := msg.Response
	if !m.view.Apply(resp) {
		return m, nil
	}

	switch resp.Request.Kind {
	case search.RequestColumns:
		pending := m.pending
		m.pending = nil
		if resp.Err != nil {
			return m, nil
		}
		m.panel = m.panel.SetColumns(m.view.Columns(), m.view.Column())
		switch {
		case pending != nil:
			column := pending.column
			if !m.view.SetColumn(column) {
				column = m.view.Column()
			}
			return m.runSearch(column, pending.term)
		case m.autoList:
			req, ok := m.view.RunSearch(m.view.Column(), "")
			if ok {
				return m, m.execute(req)
			}
		}
		return m, nil

	default:
		m.pager = m.pager.SetPages(m.view.Page(), m.view.TotalPages())
		if resp.Err == nil {
			m.table = m.sizeTable(eztable.FromRecords(m.view.Rows()))
		}
		target, _ := m.view.Target()
		settled := SearchSettledMsg{
			Kind:    m.kind,
			Target:  target,
			Query:   resp.Request.Query,
			Page:    resp.Page,
			Err:     resp.Err,
			Elapsed: msg.Elapsed,
		}
		return m, func() tea.Msg { return settled }
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.focus {
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	case FocusPanel:
		if key.Matches(msg, m.keys.Blur) {
			m.panel = m.panel.Blur()
			m.focus = FocusTable
			if _, ok := m.view.Target(); !ok {
				m.focus = FocusSidebar
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	default:
		return m.handleTableKey(msg)
	}
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entities)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		return m.Select(m.cursor)
	case key.Matches(msg, m.keys.Refresh):
		if !m.entitiesLoading {
			m.entitiesLoading = true
			return m, tea.Batch(m.LoadEntities(), m.spinner.Tick)
		}
	case key.Matches(msg, m.keys.Search):
		return m.focusPanel()
	}
	return m, nil
}

func (m Model) handleTableKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.pager.Jumping() {
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd
	}

	pk := m.keys.Pager
	switch {
	case key.Matches(msg, pk.Next, pk.Prev, pk.Jump):
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Sidebar):
		m.focus = FocusSidebar
		return m, nil
	case key.Matches(msg, m.keys.Search):
		return m.focusPanel()
	case key.Matches(msg, m.keys.Refresh):
		req, ok := m.view.Refresh()
		if !ok {
			return m, nil
		}
		return m, m.execute(req)
	case key.Matches(msg, m.keys.RowAction):
		return m, m.openHighlighted()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) focusPanel() (Model, tea.Cmd) {
	if _, ok := m.view.Target(); !ok {
		return m, nil
	}
	m.focus = FocusPanel
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Focus()
	return m, cmd
}

func (m Model) openHighlighted() tea.Cmd {
	rows := m.view.Rows()
	if m.view.Phase() == search.Failed || len(rows) == 0 {
		return nil
	}
	idx, ok := eztable.HighlightedIndex(m.table)
	if !ok || idx >= len(rows) {
		return nil
	}
	target, _ := m.view.Target()
	open := OpenRecordMsg{Kind: m.kind, Target: target, Record: rows[idx]}
	return func() tea.Msg { return open }
}

func (m Model) mainWidth() int {
	return max(20, m.width-sidebarWidth-2)
}

func (m Model) sizeTable(t bbtable.Model) bbtable.Model {
	// panel, status line, pager and table chrome
	rows := max(3, m.height-10)
	return t.
		WithPageSize(rows).
		WithFooterVisibility(false).
		WithMaxTotalWidth(m.mainWidth()).
		WithHorizontalFreezeColumnCount(1)
}

// View renders sidebar and results side by side
func (m Model) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", m.renderMain())
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	title := m.kind.Title()
	if m.kind.ServerScoped() {
		title = "Servers"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.entitiesLoading && !m.entitiesLoaded:
		b.WriteString(m.spinner.View() + " Loading...")
	case m.entitiesErr != nil:
		b.WriteString(m.styles.Error.Render(gateway.UserMessage(m.entitiesErr)))
	case len(m.entities) == 0:
		b.WriteString(m.styles.Hint.Render(fmt.Sprintf("No %ss", m.kind.EntityNoun())))
	default:
		selected, hasSelection := m.view.Target()
		for i, e := range m.entities {
			label := truncate(e.Label(), sidebarWidth-6)
			prefix := "  "
			if i == m.cursor && m.focus == FocusSidebar {
				prefix = "> "
			}
			style := m.styles.Item
			if hasSelection && selected.Key == e.Key() {
				style = m.styles.ItemActive
			}
			b.WriteString(prefix + style.Render(label) + "\n")
		}
	}

	box := m.styles.Sidebar
	if m.focus == FocusSidebar {
		box = m.styles.SidebarFocused
	}
	return box.Width(sidebarWidth).Height(max(3, m.height-2)).Render(b.String())
}

func (m Model) renderMain() string {
	var sections []string

	target, selected := m.view.Target()
	if !selected {
		sections = append(sections, m.styles.Hint.Render(fmt.Sprintf("Select a %s from the list to begin.", m.kind.EntityNoun())))
		if m.notice != "" {
			sections = append(sections, m.styles.Error.Render(m.notice))
		}
		return lipgloss.NewStyle().Width(m.mainWidth()).Render(strings.Join(sections, "\n\n"))
	}

	sections = append(sections, m.styles.Title.Render(target.Label), m.panel.View())
	if m.notice != "" {
		sections = append(sections, m.styles.Error.Render(m.notice))
	}

	switch m.view.Phase() {
	case search.ColumnsLoading:
		sections = append(sections, m.spinner.View()+" Loading columns...")
	case search.SearchLoading:
		sections = append(sections, m.spinner.View()+" Searching...")
	case search.Failed:
		sections = append(sections, m.styles.Error.Render(errorText(m.view.Err())))
	default:
		switch {
		case !m.view.Searched():
			sections = append(sections, m.styles.Hint.Render("Pick a column, type a term and press enter."))
		case len(m.view.Rows()) == 0:
			sections = append(sections, eztable.Placeholder(), m.pager.View())
		default:
			sections = append(sections, m.table.View(), m.summary()+"   "+m.pager.View())
		}
	}

	return lipgloss.NewStyle().Width(m.mainWidth()).Render(strings.Join(sections, "\n\n"))
}

func (m Model) summary() string {
	n := len(m.view.Rows())
	if total := m.view.Total(); total >= 0 {
		return m.styles.Hint.Render(fmt.Sprintf("%d rows of %d", n, total))
	}
	return m.styles.Hint.Render(fmt.Sprintf("%d rows", n))
}

func errorText(err error) string {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return "Your session has expired. Please log in again."
	}
	return gateway.UserMessage(err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
