package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sushant-115/pagestore/core/storage/recordtype"
)

type typeRow struct {
	Name    string   `json:"name"`
	Fields  []string `json:"fields"`
	Key     string   `json:"key"`
	Records int      `json:"records"`
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

func renderTypes(w io.Writer, format string, rows []typeRow) error {
	if format == "json" {
		if rows == nil {
			rows = []typeRow{}
		}
		return renderJSON(w, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 types)")
		return nil
	}

	t := newTable(w, "Type", "Fields", "Key", "Records")
	for _, r := range rows {
		t.AppendRow(table.Row{r.Name, strings.Join(r.Fields, ","), r.Key, r.Records})
	}
	t.Render()
	return nil
}

// renderRecords prints values row by row under the schema field names.
func renderRecords(w io.Writer, format string, fields []string, rows [][]string) error {
	if format == "json" {
		results := make([]map[string]string, len(rows))
		for i, row := range rows {
			results[i] = make(map[string]string, len(fields))
			for j, f := range fields {
				results[i][f] = row[j]
			}
		}
		return renderJSON(w, results)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 records)")
		return nil
	}

	header := make([]any, len(fields))
	for i, f := range fields {
		header[i] = f
	}
	t := newTable(w, header...)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		t.AppendRow(r)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d records)\n", len(rows))
	return nil
}

func renderPages(w io.Writer, format string, pages []recordtype.PageInfo) error {
	if format == "json" {
		type pageRow struct {
			ID       uint64 `json:"id"`
			Used     int    `json:"used"`
			Capacity int    `json:"capacity"`
		}
		out := make([]pageRow, len(pages))
		for i, p := range pages {
			out[i] = pageRow{ID: uint64(p.ID), Used: p.Used, Capacity: p.Capacity}
		}
		return renderJSON(w, out)
	}
	if len(pages) == 0 {
		_, _ = fmt.Fprintln(w, "(0 pages)")
		return nil
	}

	t := newTable(w, "Page", "Used", "Capacity")
	for _, p := range pages {
		t.AppendRow(table.Row{uint64(p.ID), p.Used, p.Capacity})
	}
	t.Render()
	return nil
}
