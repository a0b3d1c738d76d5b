// Package table renders record pages with bubble-table.
package table

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	bbtable "github.com/evertras/bubble-table/table"

	"github.com/nhath/gamedash/internal/config"
	"github.com/nhath/gamedash/internal/record"
)

// EmptyMessage is shown in place of a table with no rows
const EmptyMessage = "No results found."

// MaxColumnWidth caps a single column
const MaxColumnWidth = 40

// rowIndexKey stores the source row in RowData; it has no column so it is never rendered
const rowIndexKey = "__row"

// Nord defaults, replaced by Init
var (
	colorForeground = lipgloss.Color("#D8DEE9")
	colorFaint      = lipgloss.Color("#4C566A")
	colorHeader     = lipgloss.Color("#8FBCBB")
	colorHighlight  = lipgloss.Color("#A3BE8C")
	colorNumber     = lipgloss.Color("#B48EAD")
	colorBool       = lipgloss.Color("#D08770")
	colorString     = lipgloss.Color("#EBCB8B")
	colorBorder     = lipgloss.Color("#4C566A")
)

// Init applies the configured theme to every table built afterwards
func Init(theme config.Theme) {
	colorForeground = lipgloss.Color(theme.TextPrimary)
	colorFaint = lipgloss.Color(theme.TextFaint)
	colorHeader = lipgloss.Color(theme.Highlight)
	colorHighlight = lipgloss.Color(theme.Success)
	colorNumber = lipgloss.Color(theme.TextSecondary)
	colorBool = lipgloss.Color(theme.Warning)
	colorString = lipgloss.Color(theme.Accent)
	colorBorder = lipgloss.Color(theme.BorderColor)
}

// New creates a themed bubble-table with no background
func New(cols []bbtable.Column) bbtable.Model {
	return bbtable.New(cols).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colorForeground).
			BorderForeground(colorBorder)).
		HeaderStyle(lipgloss.NewStyle().
			Foreground(colorHeader).
			Bold(true)).
		HighlightStyle(lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)).
		Focused(true).
		BorderRounded()
}

// FromGrid builds a table from a record grid, one bubble-table column per header
func FromGrid(g record.Grid) bbtable.Model {
	widths := columnWidths(g.Headers, g.Rows)

	cols := make([]bbtable.Column, 0, len(g.Headers))
	for i, h := range g.Headers {
		cols = append(cols, bbtable.NewColumn(columnKey(i), h, min(widths[i], MaxColumnWidth)))
	}

	rows := make([]bbtable.Row, 0, len(g.Rows))
	for r, cells := range g.Rows {
		data := bbtable.RowData{rowIndexKey: r}
		for i, val := range cells {
			data[columnKey(i)] = bbtable.NewStyledCell(val, ValueStyle(val))
		}
		rows = append(rows, bbtable.NewRow(data))
	}

	return New(cols).WithRows(rows)
}

// FromRecords is FromGrid over record.Table
func FromRecords(rows []record.Record) bbtable.Model {
	return FromGrid(record.Table(rows))
}

// HighlightedIndex returns the source row of the highlighted table row
func HighlightedIndex(m bbtable.Model) (int, bool) {
	data := m.HighlightedRow().Data
	if data == nil {
		return 0, false
	}
	idx, ok := data[rowIndexKey].(int)
	return idx, ok
}

// Placeholder renders the empty-result message
func Placeholder() string {
	return lipgloss.NewStyle().Foreground(colorFaint).Italic(true).Render(EmptyMessage)
}

// Header keys are positional; record keys may contain characters bubble-table
// uses internally, and duplicate titles stay distinct.
func columnKey(i int) string {
	return "c" + strconv.Itoa(i)
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(val))
			}
		}
	}
	// padding
	for i := range widths {
		widths[i] += 2
	}
	return widths
}

// ValueStyle colors a cell by the shape of its display text
func ValueStyle(val string) lipgloss.Style {
	if val == "" || val == "null" {
		return lipgloss.NewStyle().Foreground(colorFaint).Italic(true)
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return lipgloss.NewStyle().Foreground(colorNumber)
	}
	switch strings.ToLower(val) {
	case "true", "false":
		return lipgloss.NewStyle().Foreground(colorBool)
	}
	return lipgloss.NewStyle().Foreground(colorString)
}
