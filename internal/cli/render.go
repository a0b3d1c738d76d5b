package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/search"
)

// Output formats accepted by --format
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// RenderPage writes one result page in the given format
func RenderPage(w io.Writer, page search.Page, pageNum int, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return renderJSON(w, page, pageNum)
	case FormatCSV:
		return renderGrid(w, record.Table(page.Rows), func(t table.Writer) { t.RenderCSV() })
	case FormatMarkdown, "md":
		return renderGrid(w, record.Table(page.Rows), func(t table.Writer) { t.RenderMarkdown() })
	case FormatTable, "":
		grid := record.Table(page.Rows)
		if grid.Empty() {
			_, _ = fmt.Fprintln(w, "No results found.")
			return nil
		}
		if err := renderGrid(w, grid, func(t table.Writer) {
			t.SetStyle(table.StyleLight)
			t.Render()
		}); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, footer(page, pageNum))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json, csv or markdown)", format)
	}
}

func renderGrid(w io.Writer, grid record.Grid, render func(table.Writer)) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(grid.Headers))
	for i, h := range grid.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, cells := range grid.Rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}
	render(t)
	return nil
}

func footer(page search.Page, pageNum int) string {
	s := fmt.Sprintf("Page %d of %d (%d rows", pageNum, page.TotalPages, len(page.Rows))
	if page.Total >= 0 {
		s += fmt.Sprintf(", %d total", page.Total)
	}
	return s + ")"
}

type jsonPage struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      *int64          `json:"total,omitempty"`
	Data       []record.Record `json:"data"`
}

func renderJSON(w io.Writer, page search.Page, pageNum int) error {
	out := jsonPage{Page: pageNum, TotalPages: page.TotalPages, Data: page.Rows}
	if page.Total >= 0 {
		total := page.Total
		out.Total = &total
	}
	if out.Data == nil {
		out.Data = []record.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
