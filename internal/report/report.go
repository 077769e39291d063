//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report renders labelled result tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Table is a titled result set with explicit column labels.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of the named column, or nil if there is no such
// column.
func (t *Table) Column(name string) []any {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Render writes the table to w in the given format.
func (t *Table) Render(w io.Writer, format string) error {
	tw := table.NewWriter()

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = formatValue(v)
		}
		tw.AppendRow(r)
	}

	var err error
	switch format {
	case FormatTable, "":
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(t.Title)
		_, err = fmt.Fprintln(w, tw.Render())
	case FormatCSV:
		_, err = fmt.Fprintln(w, tw.RenderCSV())
	case FormatMarkdown:
		_, err = fmt.Fprintf(w, "### %s\n\n%s\n", t.Title, tw.RenderMarkdown())
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", t.Title, err)
	}
	return nil
}

func formatValue(v any) any {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case []byte:
		return string(n)
	default:
		return v
	}
}
