package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhath/gamedash/internal/record"
)

type fakeSource struct {
	columns map[string][]string
	pages   map[int]Page
	err     error
	queries []Query
}

func (f *fakeSource) ListColumns(_ context.Context, key string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.columns[key], nil
}

func (f *fakeSource) Search(_ context.Context, q Query) (Page, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return Page{}, f.err
	}
	return f.pages[q.Page], nil
}

func srv1Source() *fakeSource {
	return &fakeSource{
		columns: map[string][]string{
			"srv1": {"name", "level"},
			"srv2": {"char_id"},
		},
		pages: map[int]Page{
			1: {Rows: []record.Record{record.New("name", "Bob", "level", 50)}, TotalPages: 3, Total: 61},
			2: {Rows: []record.Record{record.New("name", "Ann", "level", 12)}, TotalPages: 3, Total: 61},
			3: {Rows: []record.Record{record.New("name", "Cid", "level", 1)}, TotalPages: 3, Total: 61},
		},
	}
}

// loaded returns a view with srv1 selected and its columns applied.
func loaded(t *testing.T, src *fakeSource) *View {
	t.Helper()
	v := New(0)
	req := v.SelectEntity(Target{Key: "srv1", Label: "Server 1"})
	require.True(t, v.Apply(Execute(context.Background(), src, req)))
	return v
}

func TestNewViewIsIdle(t *testing.T) {
	v := New(0)
	assert.Equal(t, Idle, v.Phase())
	assert.Equal(t, DefaultPageSize, v.PageSize())
	assert.Equal(t, 1, v.Page())
	assert.False(t, v.Loading())

	_, ok := v.RunSearch("", "x")
	assert.False(t, ok, "search without an entity must be a no-op")
	_, ok = v.ChangePage(1)
	assert.False(t, ok)
	_, ok = v.Refresh()
	assert.False(t, ok)
}

func TestSelectEntityDefaultsToFirstColumn(t *testing.T) {
	src := srv1Source()
	v := New(0)

	req := v.SelectEntity(Target{Key: "srv1"})
	assert.Equal(t, RequestColumns, req.Kind)
	assert.Equal(t, ColumnsLoading, v.Phase())
	assert.True(t, v.Loading())
	assert.Equal(t, "", v.Column())

	require.True(t, v.Apply(Execute(context.Background(), src, req)))
	assert.Equal(t, Ready, v.Phase())
	assert.False(t, v.Loading())
	assert.Equal(t, []string{"name", "level"}, v.Columns())
	assert.Equal(t, "name", v.Column())
}

func TestRunSearchRoundTrip(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	req, ok := v.RunSearch("level", "50")
	require.True(t, ok)
	assert.Equal(t, SearchLoading, v.Phase())
	assert.Equal(t, Query{EntityKey: "srv1", Column: "level", Term: "50", Page: 1, PageSize: 30}, req.Query)

	require.True(t, v.Apply(Execute(context.Background(), src, req)))
	assert.Equal(t, Ready, v.Phase())
	assert.Equal(t, src.pages[1].Rows, v.Rows())
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 3, v.TotalPages())
	assert.Equal(t, int64(61), v.Total())
	assert.True(t, v.Searched())

	g := record.Table(v.Rows())
	assert.Equal(t, []string{"name", "level"}, g.Headers)
	assert.Equal(t, [][]string{{"Bob", "50"}}, g.Rows)
}

func TestRunSearchEmptyTermIsSent(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	req, ok := v.RunSearch("name", "")
	require.True(t, ok)
	v.Apply(Execute(context.Background(), src, req))
	require.Len(t, src.queries, 1)
	assert.Equal(t, "", src.queries[0].Term)
}

func TestRunSearchRejectsUnknownColumn(t *testing.T) {
	v := loaded(t, srv1Source())
	_, ok := v.RunSearch("nope", "x")
	assert.False(t, ok)
	assert.Equal(t, Ready, v.Phase())
}

func TestEmptyColumnList(t *testing.T) {
	src := &fakeSource{columns: map[string][]string{}}
	v := New(0)
	v.Apply(Execute(context.Background(), src, v.SelectEntity(Target{Key: "bare"})))

	assert.Equal(t, "", v.Column())
	assert.False(t, v.SetColumn("x"))
	assert.True(t, v.SetColumn(""))

	req, ok := v.RunSearch("", "term")
	require.True(t, ok)
	assert.Equal(t, "", req.Query.Column)
}

func TestSetColumn(t *testing.T) {
	v := loaded(t, srv1Source())
	assert.True(t, v.SetColumn("level"))
	assert.Equal(t, "level", v.Column())
	assert.False(t, v.SetColumn("missing"))
	assert.Equal(t, "level", v.Column())
}

func TestChangePageBounds(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	_, ok := v.ChangePage(1)
	assert.False(t, ok, "no pages before the first search")

	req, _ := v.RunSearch("name", "")
	v.Apply(Execute(context.Background(), src, req))

	for _, page := range []int{-1, 0, 4, 100} {
		before := *v
		_, ok := v.ChangePage(page)
		assert.False(t, ok, "page %d", page)
		assert.Equal(t, before, *v, "state must be unchanged for page %d", page)
	}

	for _, page := range []int{1, 2, 3} {
		req, ok := v.ChangePage(page)
		require.True(t, ok, "page %d", page)
		assert.Equal(t, "name", req.Query.Column)
		v.Apply(Execute(context.Background(), src, req))
		assert.Equal(t, page, v.Page())
		assert.Equal(t, src.pages[page].Rows, v.Rows())
	}
}

func TestChangePageUsesCommittedSearch(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)
	req, _ := v.RunSearch("level", "5")
	v.Apply(Execute(context.Background(), src, req))

	v.SetColumn("name")
	req, ok := v.ChangePage(2)
	require.True(t, ok)
	assert.Equal(t, "name", req.Query.Column)
	assert.Equal(t, "5", req.Query.Term)
}

func TestSelectEntityResets(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)
	req, _ := v.RunSearch("level", "50")
	v.Apply(Execute(context.Background(), src, req))
	req, _ = v.ChangePage(3)
	v.Apply(Execute(context.Background(), src, req))
	require.Equal(t, 3, v.Page())

	v.SelectEntity(Target{Key: "srv2"})
	assert.Equal(t, "", v.Term())
	assert.Equal(t, 1, v.Page())
	assert.Empty(t, v.Rows())
	assert.Equal(t, 0, v.TotalPages())
	assert.Nil(t, v.Err())
	assert.False(t, v.Searched())
}

func TestStaleColumnsResponseIsDiscarded(t *testing.T) {
	src := srv1Source()
	v := New(0)

	reqA := v.SelectEntity(Target{Key: "srv1"})
	reqB := v.SelectEntity(Target{Key: "srv2"})

	respB := Execute(context.Background(), src, reqB)
	respA := Execute(context.Background(), src, reqA)

	require.True(t, v.Apply(respB))
	assert.False(t, v.Apply(respA), "response for the previous selection must be dropped")
	assert.Equal(t, []string{"char_id"}, v.Columns())
	assert.Equal(t, "char_id", v.Column())
	assert.Equal(t, Ready, v.Phase())
}

func TestStaleSearchResponseIsDiscarded(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	stale, _ := v.RunSearch("name", "")
	v.Apply(Execute(context.Background(), src, v.SelectEntity(Target{Key: "srv2"})))

	assert.False(t, v.Apply(Execute(context.Background(), src, stale)))
	assert.Empty(t, v.Rows())
	assert.False(t, v.Loading())
}

func TestGenerationsUniqueAcrossViews(t *testing.T) {
	src := srv1Source()
	old := New(0)
	staleReq := old.SelectEntity(Target{Key: "srv1"})

	fresh := New(0)
	req := fresh.SelectEntity(Target{Key: "srv2"})
	assert.NotEqual(t, staleReq.Generation, req.Generation)

	assert.False(t, fresh.Apply(Execute(context.Background(), src, staleReq)))
	assert.Equal(t, ColumnsLoading, fresh.Phase())
	assert.True(t, fresh.Apply(Execute(context.Background(), src, req)))
	assert.Equal(t, []string{"char_id"}, fresh.Columns())
}

func TestLastSettledResponseWins(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)
	req, _ := v.RunSearch("name", "")
	v.Apply(Execute(context.Background(), src, req))

	first, _ := v.ChangePage(2)
	second, _ := v.ChangePage(3)
	assert.True(t, v.Loading())

	v.Apply(Execute(context.Background(), src, second))
	assert.True(t, v.Loading(), "first request still outstanding")
	assert.Equal(t, SearchLoading, v.Phase())

	v.Apply(Execute(context.Background(), src, first))
	assert.False(t, v.Loading())
	assert.Equal(t, 2, v.Page())
}

func TestErrorIsRecoverable(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	src.err = errors.New("boom")
	req, _ := v.RunSearch("name", "")
	v.Apply(Execute(context.Background(), src, req))
	assert.Equal(t, Failed, v.Phase())
	assert.EqualError(t, v.Err(), "boom")

	src.err = nil
	req, ok := v.RunSearch("name", "")
	require.True(t, ok)
	assert.Equal(t, SearchLoading, v.Phase())
	v.Apply(Execute(context.Background(), src, req))
	assert.Equal(t, Ready, v.Phase())
	assert.NoError(t, v.Err())
}

func TestColumnsErrorFails(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	v := New(0)
	v.Apply(Execute(context.Background(), src, v.SelectEntity(Target{Key: "srv1"})))
	assert.Equal(t, Failed, v.Phase())
	assert.Empty(t, v.Columns())

	src.err = nil
	src.columns = map[string][]string{"srv1": {"a"}}
	v.Apply(Execute(context.Background(), src, v.SelectEntity(Target{Key: "srv1"})))
	assert.Equal(t, Ready, v.Phase())
}

func TestZeroTotalPages(t *testing.T) {
	src := srv1Source()
	src.pages[1] = Page{TotalPages: 0, Total: 0}
	v := loaded(t, src)

	req, _ := v.RunSearch("name", "nobody")
	v.Apply(Execute(context.Background(), src, req))
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, 0, v.TotalPages())
	assert.Empty(t, v.Rows())

	_, ok := v.ChangePage(1)
	assert.False(t, ok)
}

func TestPageClampedToTotal(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)
	req, _ := v.RunSearch("name", "")
	v.Apply(Execute(context.Background(), src, req))

	req, _ = v.ChangePage(3)
	src.pages[3] = Page{TotalPages: 2}
	v.Apply(Execute(context.Background(), src, req))
	assert.Equal(t, 2, v.Page())
}

func TestRefresh(t *testing.T) {
	src := srv1Source()
	v := loaded(t, src)

	req, ok := v.Refresh()
	require.True(t, ok)
	assert.Equal(t, 1, req.Query.Page)
	v.Apply(Execute(context.Background(), src, req))

	req, _ = v.ChangePage(2)
	v.Apply(Execute(context.Background(), src, req))
	req, _ = v.Refresh()
	assert.Equal(t, 2, req.Query.Page)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
