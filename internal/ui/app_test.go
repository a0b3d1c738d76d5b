package ui

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/history"
	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/search"
	"github.com/nhath/gamedash/internal/session"
	"github.com/nhath/gamedash/internal/testutil"
	"github.com/nhath/gamedash/internal/ui/components/login"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
)

type memStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

func newMemStore() *memStore { return &memStore{secrets: map[string]string{}} }

func (s *memStore) GetSecret(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secrets[key], nil
}

func (s *memStore) SetSecret(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = value
	return nil
}

func (s *memStore) DeleteSecret(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, key)
	return nil
}

func (s *memStore) token() string {
	v, _ := s.GetSecret("token:test")
	return v
}

type fakeBackend struct {
	mu        sync.Mutex
	store     *memStore
	sess      *session.Session
	meErr     error
	searchErr error
	loggedOut bool
	queries   []search.Query
}

func newBackend() *fakeBackend {
	store := newMemStore()
	return &fakeBackend{store: store, sess: session.New("test", store)}
}

func (b *fakeBackend) Session() *session.Session { return b.sess }

func (b *fakeBackend) Login(ctx context.Context, username, password string) (gateway.Token, error) {
	if password != "secret" {
		return gateway.Token{}, &gateway.NetworkError{Op: "log in", Status: http.StatusBadRequest}
	}
	return gateway.Token{AccessToken: "tok", TokenType: "bearer"}, nil
}

func (b *fakeBackend) Me(ctx context.Context) (session.User, error) {
	if b.meErr != nil {
		return session.User{}, b.meErr
	}
	return session.User{ID: 1, Username: "admin"}, nil
}

func (b *fakeBackend) Logout(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedOut = true
	return nil
}

func (b *fakeBackend) ListEntities(ctx context.Context, kind gateway.Kind) ([]gateway.Entity, error) {
	if kind == gateway.Tables {
		return []gateway.Entity{{Name: "users", RecordCount: 3}}, nil
	}
	return []gateway.Entity{{ID: 1, Name: "S1", DBName: "fe_game_1"}}, nil
}

func (b *fakeBackend) Source(kind gateway.Kind) search.Source {
	return fakeSource{b}
}

func (b *fakeBackend) queryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queries)
}

type fakeSource struct{ b *fakeBackend }

func (s fakeSource) ListColumns(ctx context.Context, key string) ([]string, error) {
	return []string{"id", "name"}, nil
}

func (s fakeSource) Search(ctx context.Context, q search.Query) (search.Page, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.queries = append(s.b.queries, q)
	if s.b.searchErr != nil {
		return search.Page{}, s.b.searchErr
	}
	return search.Page{Rows: []record.Record{record.New("id", 1, "name", "Bob")}, TotalPages: 1, Total: 1}, nil
}

var errExpired = &gateway.NetworkError{Op: "fetch user data", Status: http.StatusUnauthorized}

// drain runs cmd and flattens batches. Commands that block (clock, cursor
// blink, spinner frames) are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// settle feeds everything cmd produces back into m
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := drain(cmd)
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 500, "message loop did not settle")
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		next, c := m.Update(msg)
		m = next.(Model)
		queue = append(queue, drain(c)...)
	}
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return settle(t, next.(Model), cmd)
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, b *fakeBackend, store *history.Store) Model {
	t.Helper()
	m := NewModel(Options{
		Config:  config.DefaultConfig(),
		Profile: &config.Profile{Name: "test", BaseURL: "http://localhost:8000", Username: "admin"},
		Backend: b,
		History: store,
		Logger:  testutil.NewTestLogger(t),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

func openHistoryStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 50)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// loggedIn returns a model on the dashboard with the users table listed
func loggedIn(t *testing.T, b *fakeBackend, store *history.Store) Model {
	t.Helper()
	m := newTestModel(t, b, store)
	m = settle(t, m, m.Init())
	require.Equal(t, StateLoggedOut, m.State())

	m = send(t, m, login.SubmitMsg{Username: "admin", Password: "secret"})
	require.Equal(t, StateDashboard, m.State())
	return m
}

func TestStartupWithoutTokenShowsLogin(t *testing.T) {
	m := newTestModel(t, newBackend(), nil)
	m = settle(t, m, m.Init())

	assert.Equal(t, StateLoggedOut, m.State())
	assert.Empty(t, m.login.Err())
	assert.Contains(t, m.View(), "GameDash")
}

func TestLoginEntersDashboard(t *testing.T) {
	b := newBackend()
	m := loggedIn(t, b, nil)

	assert.Equal(t, "tok", b.store.token())
	assert.Equal(t, "admin", m.user.Username)
	assert.Equal(t, gateway.Tables, m.ActiveKind())
	for _, v := range m.views {
		assert.Len(t, v.Entities(), 1, v.Kind())
	}
	assert.Equal(t, "fe_game_1", m.views[2].Entities()[0].Key())

	view := m.View()
	assert.Contains(t, view, "Welcome, admin!")
	assert.Contains(t, view, "users (3)")
}

func TestLoginRejected(t *testing.T) {
	b := newBackend()
	m := newTestModel(t, b, nil)
	m = settle(t, m, m.Init())

	m = send(t, m, login.SubmitMsg{Username: "admin", Password: "wrong"})

	assert.Equal(t, StateLoggedOut, m.State())
	assert.Equal(t, "Login failed. Please check your credentials.", m.login.Err())
	assert.False(t, m.login.Busy())
	assert.Empty(t, b.store.token())
}

func TestRestoredSession(t *testing.T) {
	b := newBackend()
	require.NoError(t, b.store.SetSecret("token:test", "saved"))

	m := newTestModel(t, b, nil)
	m = settle(t, m, m.Init())

	assert.Equal(t, StateDashboard, m.State())
	assert.Equal(t, "saved", b.sess.Token())
}

func TestRestoredSessionExpired(t *testing.T) {
	b := newBackend()
	b.meErr = errExpired
	require.NoError(t, b.store.SetSecret("token:test", "stale"))

	m := newTestModel(t, b, nil)
	m = settle(t, m, m.Init())

	assert.Equal(t, StateLoggedOut, m.State())
	assert.Equal(t, sessionExpiredMessage, m.login.Err())
	assert.Empty(t, b.store.token(), "a rejected token is forgotten")
}

func TestUnauthorizedSearchForcesLogout(t *testing.T) {
	b := newBackend()
	m := loggedIn(t, b, nil)

	b.searchErr = &gateway.NetworkError{Op: "fetch table data", Status: http.StatusUnauthorized}
	m = send(t, m, press("enter")) // select users; the listing gets a 401

	assert.Equal(t, StateLoggedOut, m.State())
	assert.Equal(t, sessionExpiredMessage, m.login.Err())
	assert.False(t, b.sess.Active())
	assert.Empty(t, b.store.token())
}

func TestTabSwitching(t *testing.T) {
	m := loggedIn(t, newBackend(), nil)

	m = send(t, m, press("2"))
	assert.Equal(t, gateway.Players, m.ActiveKind())
	m = send(t, m, press("3"))
	assert.Equal(t, gateway.Backpacks, m.ActiveKind())
	m = send(t, m, press("9"))
	assert.Equal(t, gateway.Backpacks, m.ActiveKind())

	// digits belong to the search input once it has focus
	m = send(t, m, press("enter"))
	require.True(t, m.views[m.active].InputFocused())
	m = send(t, m, press("1"))
	assert.Equal(t, gateway.Backpacks, m.ActiveKind())
}

func TestSearchRecordedAndRerun(t *testing.T) {
	b := newBackend()
	store := openHistoryStore(t)
	m := loggedIn(t, b, store)

	m = send(t, m, press("enter"))
	require.Equal(t, 1, b.queryCount())
	assert.Contains(t, m.statusMsg, "users (3): 1 rows")

	entries, err := store.List(context.Background(), "test", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "tables", e.Kind)
	assert.Equal(t, "users", e.EntityKey)
	assert.Equal(t, 1, e.Page)
	assert.Equal(t, 1, e.RowCount)
	assert.Equal(t, history.StatusSuccess, e.Status)

	m = send(t, m, press("ctrl+r"))
	require.True(t, m.showHistory)
	require.Equal(t, 1, m.historyList.Len())
	assert.Contains(t, m.View(), "Search History")

	m = send(t, m, press("enter"))
	assert.False(t, m.showHistory)
	assert.Equal(t, 2, b.queryCount())
	assert.Equal(t, 0, m.popupStack.Len())
}

func TestDeleteHistoryEntry(t *testing.T) {
	b := newBackend()
	store := openHistoryStore(t)
	m := loggedIn(t, b, store)
	m = send(t, m, press("enter"))

	m = send(t, m, press("ctrl+r"))
	require.Equal(t, 1, m.historyList.Len())
	m = send(t, m, press("d"))
	assert.Equal(t, 0, m.historyList.Len())

	n, err := store.Count(context.Background(), "test")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryFilter(t *testing.T) {
	store := openHistoryStore(t)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, &history.Entry{ProfileName: "test", Kind: "players", EntityKey: "fe_game_1", EntityLabel: "S1", Column: "name", Term: "bob"}))
	require.NoError(t, store.Add(ctx, &history.Entry{ProfileName: "test", Kind: "tables", EntityKey: "users", Column: "id", Term: "7"}))
	m := loggedIn(t, newBackend(), store)

	m = send(t, m, press("ctrl+r"))
	require.Equal(t, 2, m.historyList.Len())

	m = send(t, m, press("/"))
	require.True(t, m.historyFilter.Focused())
	m = send(t, m, press("bob"))
	assert.True(t, m.showHistory, "typed keys edit the filter")
	m = send(t, m, press("enter"))
	assert.False(t, m.historyFilter.Focused())
	require.Equal(t, 1, m.historyList.Len())
	assert.Equal(t, "fe_game_1", m.historyList.SelectedItem().(historyItem).entry.EntityKey)

	m = send(t, m, press("/"))
	m = send(t, m, press("esc"))
	assert.True(t, m.showHistory)
	assert.Empty(t, m.historyFilter.Value())
	assert.Equal(t, 2, m.historyList.Len())
}

func TestHistoryDisabled(t *testing.T) {
	m := loggedIn(t, newBackend(), nil)
	m = send(t, m, press("ctrl+r"))

	assert.False(t, m.showHistory)
	assert.Equal(t, "History is disabled", m.errorMsg)
}

func TestRecordDetailAndCopy(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m := loggedIn(t, newBackend(), nil)
	m = send(t, m, press("enter")) // list users
	m = send(t, m, press("enter")) // open the highlighted row

	require.True(t, m.detail.Visible())
	assert.Contains(t, m.detail.Title(), "users (3)")
	assert.Contains(t, m.detail.Content(), "Bob")
	assert.Equal(t, "detail", m.popupStack.TopName())

	m = send(t, m, press("y"))
	assert.Equal(t, record.Indent(record.New("id", 1, "name", "Bob")), copied)
	assert.Equal(t, "Copied to clipboard", m.statusMsg)

	m = send(t, m, press("esc"))
	assert.False(t, m.detail.Visible())
	assert.Equal(t, 0, m.popupStack.Len())
}

func TestHelpPopup(t *testing.T) {
	m := loggedIn(t, newBackend(), nil)

	m = send(t, m, press("?"))
	require.True(t, m.help.Visible())
	assert.Contains(t, m.help.Content(), "Search history")

	m = send(t, m, press("q"))
	assert.False(t, m.help.Visible())
}

func TestLogout(t *testing.T) {
	b := newBackend()
	m := loggedIn(t, b, nil)

	m = send(t, m, press("ctrl+l"))

	assert.Equal(t, StateLoggedOut, m.State())
	assert.True(t, b.loggedOut)
	assert.Empty(t, b.store.token())
	assert.Empty(t, m.login.Err())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, newBackend(), nil)
	_, cmd := m.Update(press("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTabIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"3", 2, true},
		{"4", 3, false},
		{"0", 0, false},
		{"a", 0, false},
		{"12", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := tabIndex(tt.in, 3)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewHistoryEntryFailure(t *testing.T) {
	msg := searchview.SearchSettledMsg{
		Kind:    gateway.Players,
		Target:  search.Target{Key: "fe_game_1", Label: "S1"},
		Query:   search.Query{EntityKey: "fe_game_1", Column: "name", Term: "bo", Page: 2},
		Err:     &gateway.NetworkError{Op: "fetch player data", Status: http.StatusInternalServerError},
		Elapsed: 1500 * time.Millisecond,
	}

	e := newHistoryEntry("test", msg)

	assert.Equal(t, "players", e.Kind)
	assert.Equal(t, "S1", e.EntityLabel)
	assert.Equal(t, "name", e.Column)
	assert.Equal(t, "bo", e.Term)
	assert.Equal(t, 2, e.Page)
	assert.Equal(t, int64(1500), e.DurationMs)
	assert.Equal(t, history.StatusError, e.Status)
	assert.Equal(t, "Failed to fetch player data. Please try again later.", e.ErrorMessage)
}
