package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/search"
	"github.com/nhath/gamedash/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sess := session.New("test", nil)
	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Session: sess})
	require.NoError(t, err)
	return c, sess
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Options{BaseURL: "http://localhost:8000"})
	require.NoError(t, err)
	assert.Equal(t, search.DefaultPageSize, c.PageSize())
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "gm" || r.PostForm.Get("password") != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
	})

	tok, err := c.Login(context.Background(), "gm", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)

	_, err = c.Login(context.Background(), "gm", "bad")
	require.Error(t, err)
	assert.Equal(t, "Login failed. Please check your credentials.", UserMessage(err))
}

func TestBearerTokenAndUnauthorized(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":3,"username":"gm"}`))
	})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, sess.Begin("good"))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.User{ID: 3, Username: "gm"}, u)
}

func TestListEntities(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tables":
			_, _ = w.Write([]byte(`[{"name":"sys_user","record_count":4}]`))
		case "/servers":
			_, _ = w.Write([]byte(`[{"id":101,"name":"Alpha","db_name":"fe_game_101"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	tables, err := c.ListEntities(context.Background(), Tables)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "sys_user", tables[0].Key())
	assert.Equal(t, "sys_user (4)", tables[0].Label())

	for _, kind := range []Kind{Players, Backpacks} {
		servers, err := c.ListEntities(context.Background(), kind)
		require.NoError(t, err)
		require.Len(t, servers, 1)
		assert.Equal(t, "fe_game_101", servers[0].Key())
		assert.Equal(t, "Alpha", servers[0].Label())
		assert.Equal(t, search.Target{Key: "fe_game_101", Label: "Alpha"}, servers[0].Target())
	}
}

func TestListColumnsPaths(t *testing.T) {
	seen := map[string]bool{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = true
		_, _ = w.Write([]byte(`{"columns":["name","level"]}`))
	})

	for _, kind := range Kinds {
		cols, err := c.ListColumns(context.Background(), kind, "srv1")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "level"}, cols)
	}
	assert.True(t, seen["/table/srv1/columns"])
	assert.True(t, seen["/player/columns/srv1"])
	assert.True(t, seen["/backpack/columns/srv1"])
}

func TestSearchParameters(t *testing.T) {
	tests := []struct {
		kind      Kind
		path      string
		columnKey string
	}{
		{Tables, "/table/items", "column"},
		{Players, "/player/items", "search_column"},
		{Backpacks, "/backpack/items", "search_column"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.path, r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "2", q.Get("page"))
				assert.Equal(t, "level", q.Get(tt.columnKey))
				assert.Equal(t, "", q.Get("search_term"))
				assert.True(t, q.Has("search_term"), "empty term must still be sent")
				assert.Equal(t, "30", q.Get("page_size"))
				_, _ = w.Write([]byte(`{"data":[{"name":"Bob","level":50}],"total_pages":4,"total":100}`))
			})

			page, err := c.Source(tt.kind).Search(context.Background(), search.Query{
				EntityKey: "items", Column: "level", Page: 2,
			})
			require.NoError(t, err)
			assert.Equal(t, 4, page.TotalPages)
			assert.Equal(t, int64(100), page.Total)
			require.Len(t, page.Rows, 1)
			assert.Equal(t, "50", record.FormatValue(page.Rows[0].Fields[1].Value))
		})
	}
}

func TestSearchTotalCountFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["a"],"data":[],"total_pages":0,"current_page":1,"total_count":0}`))
	})
	page, err := c.Search(context.Background(), Players, search.Query{EntityKey: "x", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Rows)

	c, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"total_pages":0}`))
	})
	page, err = c.Search(context.Background(), Tables, search.Query{EntityKey: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), page.Total)
}

func TestEntityKeyIsEscaped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/table/odd name/columns", r.URL.Path)
		assert.Equal(t, "/table/odd%20name/columns", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"columns":[]}`))
	})
	_, err := c.ListColumns(context.Background(), Tables, "odd name")
	require.NoError(t, err)
}

func TestErrorMessages(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/player/columns/gone":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Database gone not found"}`))
		case "/table/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`oops`))
		default:
			_, _ = w.Write([]byte(`{not json`))
		}
	})

	_, err := c.ListColumns(context.Background(), Players, "gone")
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusNotFound, ne.Status)
	assert.Equal(t, "Failed to fetch player columns: Database gone not found.", UserMessage(err))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	_, err = c.Search(context.Background(), Tables, search.Query{EntityKey: "broken"})
	assert.Equal(t, "Failed to fetch table data. Please try again later.", UserMessage(err))
	assert.Contains(t, err.Error(), "status 500")

	_, err = c.ListEntities(context.Background(), Tables)
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 0, ne.Status)
	assert.Equal(t, "Failed to fetch tables. Please try again later.", UserMessage(err))
}

func TestTransportError(t *testing.T) {
	c, err := New(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.ListEntities(context.Background(), Players)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "Failed to fetch servers. Please try again later.", ne.UserMessage())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"table": Tables, "Players": Players, " backpack ": Backpacks} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("guilds")
	assert.Error(t, err)
	assert.Equal(t, "Backpacks", Backpacks.Title())
	assert.Equal(t, "server", Players.EntityNoun())
}

func TestUserMessagePlainError(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}
