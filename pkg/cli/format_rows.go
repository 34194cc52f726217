// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// rowColumns are the leading columns of every printed row.
var rowColumns = []string{"hkey", "type", "fields"}

func rowStrings(r row.Row) []string {
	fields := make([]string, r.NumFields())
	for i := range fields {
		fields[i] = r.Datum(i).String()
	}
	return []string{r.HKey().String(), r.RowType().String(), strings.Join(fields, ", ")}
}

// rowWriter prints rows as they are produced. Table output is buffered
// until flush, as column widths depend on all rows.
type rowWriter struct {
	w      io.Writer
	format string
	table  *tablewriter.Table
	n      int64
}

func newRowWriter(w io.Writer, format string) (*rowWriter, error) {
	rw := &rowWriter{w: w, format: format}
	switch format {
	case formatTable:
		rw.table = tablewriter.NewWriter(w)
		rw.table.SetAutoFormatHeaders(false)
		rw.table.SetAutoWrapText(false)
		rw.table.SetHeader(rowColumns)
	case formatTSV:
		fmt.Fprintln(w, strings.Join(rowColumns, "\t"))
	default:
		return nil, errors.Newf("unknown format %q", format)
	}
	return rw, nil
}

func (rw *rowWriter) add(r row.Row) error {
	rw.n++
	s := rowStrings(r)
	if rw.table != nil {
		rw.table.Append(s)
		return nil
	}
	_, err := fmt.Fprintln(rw.w, strings.Join(s, "\t"))
	return err
}

// flush renders the table, if any, followed by the row count.
func (rw *rowWriter) flush() {
	if rw.table != nil {
		rw.table.Render()
	}
	fmt.Fprintf(rw.w, "(%s row%s)\n", humanize.Comma(rw.n), pluralize(rw.n))
}

func pluralize(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
