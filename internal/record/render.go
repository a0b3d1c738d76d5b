package record

import (
	"bytes"
	"encoding/json"
)

// Grid is the tabular form of a page of records
type Grid struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the grid has no data rows
func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}

// Table derives a Grid from rows. Headers come from the key order of the
// first record only; every row is rendered in that order, and a key missing
// from a later row renders as an empty cell.
func Table(rows []Record) Grid {
	if len(rows) == 0 {
		return Grid{}
	}

	headers := rows[0].Keys()
	out := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(headers))
		for j, h := range headers {
			if v, ok := r.Get(h); ok {
				cells[j] = FormatValue(v)
			}
		}
		out[i] = cells
	}
	return Grid{Headers: headers, Rows: out}
}

// FormatValue converts a raw JSON value to display text.
// Strings are unquoted, scalars keep their literal text and structured
// values are rendered as compact JSON.
func FormatValue(v json.RawMessage) string {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return string(trimmed)
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return string(trimmed)
		}
		return buf.String()
	default:
		return string(trimmed)
	}
}

// Indent renders the record as indented JSON for detail views
func Indent(r Record) string {
	b, err := r.MarshalJSON()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return string(b)
	}
	return buf.String()
}
