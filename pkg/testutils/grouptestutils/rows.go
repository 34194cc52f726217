// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package grouptestutils contains helpers for tests that build rows of a
// group from text and print operator output.
package grouptestutils

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
)

// TableRowType looks up the row type of the named table.
func TableRowType(s *rowtype.Schema, g *catalog.Group, name string) (*rowtype.TableRowType, error) {
	t, ok := g.Table(name)
	if !ok {
		return nil, errors.Newf("no table %q in group %s", name, g)
	}
	return s.TableRowType(t), nil
}

// ParseRow parses "table f1 f2 ...". Omitted trailing fields are NULL.
func ParseRow(s *rowtype.Schema, g *catalog.Group, line string) (*row.TableRow, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty row")
	}
	rt, err := TableRowType(s, g, fields[0])
	if err != nil {
		return nil, err
	}
	return row.ParseTableRow(rt, fields[1:]...)
}

// ParseRows parses one row per non-empty line of input.
func ParseRows(s *rowtype.Schema, g *catalog.Group, input string) ([]row.Row, error) {
	var rows []row.Row
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := ParseRow(s, g, line)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", line)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// FormatRows prints one row per line, preceded by its hkey.
func FormatRows(rows []row.Row) string {
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s %s\n", r.HKey(), r)
	}
	return sb.String()
}
