package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndList(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, term := range []string{"bob", "alice", "carol"} {
		e := &Entry{
			ProfileName: "local",
			Kind:        "players",
			EntityKey:   "fe_game_101",
			EntityLabel: "Alpha",
			Column:      "name",
			Term:        term,
			Page:        1,
			TotalPages:  2,
			RowCount:    30,
			ExecutedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Add(ctx, e))
		assert.NotZero(t, e.ID)
		assert.Equal(t, StatusSuccess, e.Status)
	}
	require.NoError(t, s.Add(ctx, &Entry{ProfileName: "other", Kind: "tables", EntityKey: "items"}))

	entries, err := s.List(ctx, "local", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "carol", entries[0].Term)
	assert.Equal(t, "bob", entries[2].Term)
	assert.Equal(t, "Alpha", entries[0].EntityLabel)
	assert.Equal(t, 2, entries[0].TotalPages)

	n, err := s.Count(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddValidates(t *testing.T) {
	s := newTestStore(t, 10)
	assert.Error(t, s.Add(context.Background(), &Entry{ProfileName: "local"}))
}

func TestLimitPrunesOldest(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Add(ctx, &Entry{
			ProfileName: "local", Kind: "tables", EntityKey: "items",
			Page: i + 1, ExecutedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	entries, err := s.List(ctx, "local", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 4, entries[0].Page)
	assert.Equal(t, 3, entries[1].Page)
}

func TestSearchAndDelete(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	a := &Entry{ProfileName: "local", Kind: "backpacks", EntityKey: "fe_game_102", EntityLabel: "Beta", Column: "item_id", Term: "1001"}
	b := &Entry{ProfileName: "local", Kind: "tables", EntityKey: "sys_user", Status: StatusError, ErrorMessage: "Failed to fetch table data."}
	other := &Entry{ProfileName: "remote", Kind: "tables", EntityKey: "beta_keys"}
	require.NoError(t, s.Add(ctx, a))
	require.NoError(t, s.Add(ctx, b))
	require.NoError(t, s.Add(ctx, other))

	found, err := s.Search(ctx, "local", "beta", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = s.Search(ctx, "local", "sys", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, StatusError, found[0].Status)
	assert.Equal(t, "Failed to fetch table data.", found[0].ErrorMessage)

	require.NoError(t, s.Delete(ctx, b.ID))
	found, err = s.Search(ctx, "local", "sys", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSummary(t *testing.T) {
	e := Entry{Kind: "players", EntityKey: "fe_game_101", EntityLabel: "Alpha", Column: "name", Term: "bob", Page: 3}
	assert.Equal(t, `players/Alpha name~"bob" p3`, e.Summary(0))
	assert.Equal(t, "players/Al...", e.Summary(13))

	e = Entry{Kind: "tables", EntityKey: "items", Page: 1}
	assert.Equal(t, "tables/items", e.Summary(40))
}
