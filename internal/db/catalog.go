package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nhath/gamedash/internal/record"
)

// MaxPageSize bounds SearchParams.PageSize
const MaxPageSize = 100

// MatchMode selects how a search term is compared to the column
type MatchMode int

const (
	// MatchTyped matches character columns by case-insensitive substring and
	// every other column by equality of its text form
	MatchTyped MatchMode = iota
	// MatchCast casts the column to text and matches by substring
	MatchCast
)

// TableInfo is a table with its row count
type TableInfo struct {
	Name        string
	RecordCount int64
}

// SearchParams filters and pages a table scan. An empty Column or Term
// disables the filter.
type SearchParams struct {
	Column   string
	Term     string
	Page     int
	PageSize int
	Mode     MatchMode
	// NewestFirst orders by id descending when the table has an id column
	NewestFirst bool
	// SkipUnknownColumn drops the filter instead of failing when Column is
	// not a column of the table
	SkipUnknownColumn bool
}

// Result is one page of a search
type Result struct {
	Columns    []string
	Rows       []record.Record
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// User is a row of the login user table
type User struct {
	ID       int64
	Username string
	Password string
}

// Server is a row of the server info table
type Server struct {
	ID   int64
	Name string
}

// Catalog runs the dashboard's read-only queries against one database.
// Identifiers coming from requests are checked against the live schema
// before they are quoted into SQL.
type Catalog struct {
	driver Driver
}

// NewCatalog wraps a connected driver
func NewCatalog(d Driver) *Catalog {
	return &Catalog{driver: d}
}

// Driver returns the wrapped driver
func (c *Catalog) Driver() Driver {
	return c.driver
}

// Close closes the wrapped driver
func (c *Catalog) Close() error {
	return c.driver.Close()
}

// Ping checks the connection
func (c *Catalog) Ping(ctx context.Context) error {
	return c.driver.Ping(ctx)
}

// Tables lists every table with its row count
func (c *Catalog) Tables(ctx context.Context) ([]TableInfo, error) {
	names, err := c.driver.GetTables(ctx)
	if err != nil {
		return nil, err
	}
	d := c.driver.Dialect()
	out := make([]TableInfo, 0, len(names))
	for _, name := range names {
		var n int64
		q := "SELECT COUNT(*) FROM " + d.QuoteIdent(name)
		if err := c.driver.DB().QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, WrapQueryError(fmt.Errorf("count %s: %w", name, err))
		}
		out = append(out, TableInfo{Name: name, RecordCount: n})
	}
	return out, nil
}

// Columns returns the columns of table, or ErrNotFound
func (c *Catalog) Columns(ctx context.Context, table string) ([]Column, error) {
	cols, err := c.driver.GetColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: %w", table, ErrNotFound)
	}
	return cols, nil
}

// ColumnNames returns the column names of table in declaration order
func (c *Catalog) ColumnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names, nil
}

// Search returns one page of table rows matching p
func (c *Catalog) Search(ctx context.Context, table string, p SearchParams) (*Result, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page size %d out of range", p.PageSize)
	}

	d := c.driver.Dialect()
	var (
		where string
		args  []any
	)
	if p.Column != "" {
		col, ok := findColumn(cols, p.Column)
		switch {
		case !ok && !p.SkipUnknownColumn:
			return nil, fmt.Errorf("%w: %s", ErrInvalidColumn, p.Column)
		case ok && p.Term != "":
			where, args = matchClause(d, col, p)
		}
	}

	total, err := c.count(ctx, table, where, args)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
		quoted[i] = d.QuoteIdent(col.Name)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(d.QuoteIdent(table))
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if _, ok := findColumn(cols, "id"); ok && p.NewestFirst {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(d.QuoteIdent("id"))
		sb.WriteString(" DESC")
	}
	n := len(args)
	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", d.Placeholder(n+1), d.Placeholder(n+2))
	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)

	rows, err := c.driver.DB().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	return &Result{
		Columns:    names,
		Rows:       records,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: TotalPages(total, p.PageSize),
	}, nil
}

// TotalPages is ceil(total / pageSize)
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func (c *Catalog) count(ctx context.Context, table, where string, args []any) (int64, error) {
	q := "SELECT COUNT(*) FROM " + c.driver.Dialect().QuoteIdent(table)
	if where != "" {
		q += " WHERE " + where
	}
	var n int64
	if err := c.driver.DB().QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, WrapQueryError(err)
	}
	return n, nil
}

func matchClause(d Dialect, col Column, p SearchParams) (string, []any) {
	ident := d.QuoteIdent(col.Name)
	ph := d.Placeholder(1)
	switch {
	case p.Mode == MatchCast:
		return d.CastText(ident) + " LIKE " + ph, []any{"%" + p.Term + "%"}
	case col.Text:
		return d.ContainsFold(ident, ph), []any{"%" + p.Term + "%"}
	default:
		return d.CastText(ident) + " = " + ph, []any{p.Term}
	}
}

func findColumn(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// FindUser looks a user up by name in table
func (c *Catalog) FindUser(ctx context.Context, table, username string) (User, error) {
	d := c.driver.Dialect()
	q := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s = %s LIMIT 1",
		d.QuoteIdent("id"), d.QuoteIdent("username"), d.QuoteIdent("password"),
		d.QuoteIdent(table), d.QuoteIdent("username"), d.Placeholder(1))

	var u User
	err := c.driver.DB().QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return User{}, WrapQueryError(err)
	}
	return u, nil
}

// Servers lists the game servers registered in table
func (c *Catalog) Servers(ctx context.Context, table string) ([]Server, error) {
	d := c.driver.Dialect()
	q := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
		d.QuoteIdent("id"), d.QuoteIdent("name"), d.QuoteIdent(table), d.QuoteIdent("id"))

	rows, err := c.driver.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	var out []Server
	for rows.Next() {
		var s Server
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, WrapQueryError(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapQueryError(err)
	}
	return out, nil
}
