// Package search implements the paginated, column-filtered search state
// shared by every dashboard view.
//
// A View never performs I/O itself. Each operation returns a Request that the
// caller executes (usually inside a tea.Cmd) and feeds back through Apply.
// Requests carry the entity-selection generation they were issued under, and
// Apply drops any response whose generation is no longer current.
package search

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/nhath/gamedash/internal/record"
)

// DefaultPageSize is the page size negotiated with the backend
const DefaultPageSize = 30

// generations is shared by all Views so a generation is never reused, even
// by a View built to replace another one.
var generations atomic.Uint64

// Phase is the externally visible state of a View
type Phase int

const (
	Idle Phase = iota
	ColumnsLoading
	Ready
	SearchLoading
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ColumnsLoading:
		return "columns-loading"
	case Ready:
		return "ready"
	case SearchLoading:
		return "search-loading"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Target identifies the selected entity (a table or a game server)
type Target struct {
	Key   string // table name or database name sent to the backend
	Label string
}

// Query is one page request
type Query struct {
	EntityKey string
	Column    string
	Term      string
	Page      int
	PageSize  int
}

// Page is one page of results
type Page struct {
	Rows       []record.Record
	TotalPages int
	Total      int64 // total matching rows when the backend reports it, else -1
}

// Source is the capability set a View is parameterized over
type Source interface {
	ListColumns(ctx context.Context, entityKey string) ([]string, error)
	Search(ctx context.Context, q Query) (Page, error)
}

// RequestKind distinguishes column loads from searches
type RequestKind int

const (
	RequestColumns RequestKind = iota
	RequestSearch
)

// Request is an outstanding call issued by a View
type Request struct {
	Generation uint64
	Kind       RequestKind
	Query      Query
}

// Response is the settled result of a Request
type Response struct {
	Request Request
	Columns []string
	Page    Page
	Err     error
}

// Execute runs req against src
func Execute(ctx context.Context, src Source, req Request) Response {
	resp := Response{Request: req}
	switch req.Kind {
	case RequestColumns:
		resp.Columns, resp.Err = src.ListColumns(ctx, req.Query.EntityKey)
	default:
		resp.Page, resp.Err = src.Search(ctx, req.Query)
	}
	return resp
}

// View holds the search and pagination state for one mounted view
type View struct {
	pageSize int

	generation uint64
	target     Target
	selected   bool

	columns []string
	column  string
	term    string

	page       int
	totalPages int
	total      int64
	rows       []record.Record
	searched   bool

	phase   Phase
	err     error
	pending int
}

// New creates an idle View. A non-positive pageSize uses DefaultPageSize.
func New(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{pageSize: pageSize, page: 1, total: -1}
}

// SelectEntity switches the view to t and requests its columns.
// Term, page, rows, columns and error are reset; responses issued for the
// previous selection will be discarded.
func (v *View) SelectEntity(t Target) Request {
	v.generation = generations.Add(1)
	v.target = t
	v.selected = true

	v.columns = nil
	v.column = ""
	v.term = ""
	v.page = 1
	v.totalPages = 0
	v.total = -1
	v.rows = nil
	v.searched = false
	v.err = nil

	v.pending = 1
	v.phase = ColumnsLoading

	return Request{
		Generation: v.generation,
		Kind:       RequestColumns,
		Query:      Query{EntityKey: t.Key},
	}
}

// SetColumn changes the active column. Only members of the loaded column
// list are accepted (or "" while the list is empty).
func (v *View) SetColumn(column string) bool {
	if !v.validColumn(column) {
		return false
	}
	v.column = column
	return true
}

// RunSearch requests page 1 for column/term. An empty term is an
// unfiltered listing and is still sent.
func (v *View) RunSearch(column, term string) (Request, bool) {
	if !v.selected || !v.validColumn(column) {
		return Request{}, false
	}
	v.column = column
	v.term = term
	return v.issueSearch(1), true
}

// ChangePage requests newPage with the committed column and term.
// Pages outside [1, TotalPages] are ignored.
func (v *View) ChangePage(newPage int) (Request, bool) {
	if !v.selected || newPage < 1 || newPage > v.totalPages {
		return Request{}, false
	}
	return v.issueSearch(newPage), true
}

// Refresh re-requests the current page
func (v *View) Refresh() (Request, bool) {
	if !v.selected {
		return Request{}, false
	}
	page := v.page
	if v.totalPages == 0 {
		page = 1
	}
	return v.issueSearch(page), true
}

func (v *View) issueSearch(page int) Request {
	v.pending++
	v.phase = SearchLoading
	return Request{
		Generation: v.generation,
		Kind:       RequestSearch,
		Query: Query{
			EntityKey: v.target.Key,
			Column:    v.column,
			Term:      v.term,
			Page:      page,
			PageSize:  v.pageSize,
		},
	}
}

// Apply folds a settled response into the view. It returns false when the
// response belongs to an older selection and was dropped.
func (v *View) Apply(resp Response) bool {
	if !v.selected || resp.Request.Generation != v.generation {
		return false
	}
	if v.pending > 0 {
		v.pending--
	}

	if resp.Err != nil {
		v.err = resp.Err
		if resp.Request.Kind == RequestSearch {
			v.searched = true
		}
		v.settle()
		return true
	}
	v.err = nil

	switch resp.Request.Kind {
	case RequestColumns:
		v.columns = slices.Clone(resp.Columns)
		v.column = ""
		if len(v.columns) > 0 {
			v.column = v.columns[0]
		}
	case RequestSearch:
		v.rows = resp.Page.Rows
		v.totalPages = max(resp.Page.TotalPages, 0)
		v.total = resp.Page.Total
		v.page = resp.Request.Query.Page
		if v.totalPages == 0 {
			v.page = 1
		} else if v.page > v.totalPages {
			v.page = v.totalPages
		}
		v.searched = true
	}
	v.settle()
	return true
}

// settle picks the phase once no request of the current generation is left.
// The most recently settled response decides between Ready and Failed.
func (v *View) settle() {
	if v.pending > 0 {
		if v.phase != ColumnsLoading {
			v.phase = SearchLoading
		}
		return
	}
	if v.err != nil {
		v.phase = Failed
		return
	}
	v.phase = Ready
}

func (v *View) validColumn(column string) bool {
	if len(v.columns) == 0 {
		return column == ""
	}
	return slices.Contains(v.columns, column)
}

// Generation returns the current entity-selection generation
func (v *View) Generation() uint64 { return v.generation }

// Phase returns the current phase
func (v *View) Phase() Phase { return v.phase }

// Loading reports whether a request for the current selection is outstanding
func (v *View) Loading() bool { return v.pending > 0 }

// Target returns the selected entity
func (v *View) Target() (Target, bool) { return v.target, v.selected }

// Columns returns a copy of the loaded column list
func (v *View) Columns() []string { return slices.Clone(v.columns) }

// Column returns the active column
func (v *View) Column() string { return v.column }

// Term returns the committed search term
func (v *View) Term() string { return v.term }

// Page returns the current page (1-based)
func (v *View) Page() int { return v.page }

// TotalPages returns the page count of the last result
func (v *View) TotalPages() int { return v.totalPages }

// Total returns the matching row count, or -1 when unknown
func (v *View) Total() int64 { return v.total }

// Rows returns the loaded rows
func (v *View) Rows() []record.Record { return v.rows }

// Searched reports whether a search settled for the current selection
func (v *View) Searched() bool { return v.searched }

// Err returns the error of the most recently settled request, if any
func (v *View) Err() error { return v.err }

// PageSize returns the page size sent with every search
func (v *View) PageSize() int { return v.pageSize }
