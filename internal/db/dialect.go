package db

import (
	"strconv"
	"strings"
)

// Dialect renders the SQL fragments that differ between engines
type Dialect interface {
	QuoteIdent(name string) string
	Placeholder(n int) string
	// CastText renders expr as a character value
	CastText(expr string) string
	// ContainsFold matches expr case-insensitively against a LIKE pattern
	ContainsFold(expr, placeholder string) string
}

type mysqlDialect struct{}

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
func (mysqlDialect) Placeholder(int) string      { return "?" }
func (mysqlDialect) CastText(expr string) string { return "CAST(" + expr + " AS CHAR)" }
func (mysqlDialect) ContainsFold(expr, ph string) string {
	return "LOWER(" + expr + ") LIKE LOWER(" + ph + ")"
}

type postgresDialect struct{}

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
func (postgresDialect) Placeholder(n int) string    { return "$" + strconv.Itoa(n) }
func (postgresDialect) CastText(expr string) string { return "CAST(" + expr + " AS TEXT)" }
func (postgresDialect) ContainsFold(expr, ph string) string {
	return "CAST(" + expr + " AS TEXT) ILIKE " + ph
}

type sqliteDialect struct{}

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
func (sqliteDialect) Placeholder(int) string      { return "?" }
func (sqliteDialect) CastText(expr string) string { return "CAST(" + expr + " AS TEXT)" }
func (sqliteDialect) ContainsFold(expr, ph string) string {
	return "LOWER(" + expr + ") LIKE LOWER(" + ph + ")"
}
