// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package row contains the row values flowing between operators. Rows are
// immutable once built, so a consumer may retain them past the call that
// produced them.
package row

import (
	"fmt"

	"github.com/cockroachdb/groupflow/pkg/sql/hkey"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/redact"
)

// Row is a tuple of datums with an hkey.
type Row interface {
	fmt.Stringer
	redact.SafeFormatter

	RowType() rowtype.RowType
	HKey() hkey.HKey
	NumFields() int
	Datum(i int) tree.Datum
}

// TableRow is a row of a table.
type TableRow struct {
	rowType *rowtype.TableRowType
	hkey    hkey.HKey
	datums  tree.Datums
}

var _ Row = (*TableRow)(nil)

// NewTableRow builds a row of the given type, computing its hkey from the
// primary key columns. Key columns must not be NULL.
func NewTableRow(rt *rowtype.TableRowType, datums ...tree.Datum) (*TableRow, error) {
	if len(datums) != rt.NumFields() {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue,
			"%s rows have %d fields, got %d", rt, redact.Safe(rt.NumFields()), redact.Safe(len(datums)))
	}
	for i, d := range datums {
		if d == nil {
			return nil, pgerror.Newf(pgcode.InvalidParameterValue,
				"field %s is missing", redact.SafeString(rt.FieldName(i)))
		}
		if d == tree.DNull {
			continue
		}
		if typ := rt.FieldType(i); !d.ResolvedType().Equivalent(typ) {
			return nil, pgerror.Newf(pgcode.DatatypeMismatch,
				"field %s has type %s, got %s of type %s",
				redact.SafeString(rt.FieldName(i)), typ, d, d.ResolvedType())
		}
	}

	table := rt.Table()
	segs := rt.HKeySegments()
	keySegs := make([]hkey.Segment, len(segs))
	for i, s := range segs {
		vals := make(tree.Datums, s.NumColumns)
		for j := range vals {
			col := table.PrimaryKey[s.FirstKey+j]
			if datums[col] == tree.DNull {
				return nil, pgerror.Newf(pgcode.NotNullViolation,
					"null value in key column %s", redact.SafeString(rt.FieldName(col)))
			}
			vals[j] = datums[col]
		}
		keySegs[i] = hkey.Segment{Ordinal: s.Table.Ordinal, Values: vals}
	}
	return &TableRow{
		rowType: rt,
		hkey:    hkey.MakeHKey(keySegs...),
		datums:  append(tree.Datums(nil), datums...),
	}, nil
}

// RowType implements Row.
func (r *TableRow) RowType() rowtype.RowType { return r.rowType }

// HKey implements Row.
func (r *TableRow) HKey() hkey.HKey { return r.hkey }

// NumFields implements Row.
func (r *TableRow) NumFields() int { return len(r.datums) }

// Datum implements Row.
func (r *TableRow) Datum(i int) tree.Datum { return r.datums[i] }

// String implements fmt.Stringer.
func (r *TableRow) String() string { return redact.StringWithoutMarkers(r) }

// SafeFormat implements redact.SafeFormatter.
func (r *TableRow) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(r.rowType)
	formatDatums(w, r)
}

// FlattenedRow combines a parent row and a child row, either of which may be
// missing. It does not copy the fields of its sources.
type FlattenedRow struct {
	rowType *rowtype.FlattenedRowType
	parent  Row
	child   Row
	hkey    hkey.HKey
}

var _ Row = (*FlattenedRow)(nil)

// NewFlattenedRow returns a row of the flattened type over parent and child
// with the given hkey.
func NewFlattenedRow(rt *rowtype.FlattenedRowType, parent, child Row, key hkey.HKey) *FlattenedRow {
	return &FlattenedRow{rowType: rt, parent: parent, child: child, hkey: key}
}

// Parent returns the parent side, or nil.
func (r *FlattenedRow) Parent() Row { return r.parent }

// Child returns the child side, or nil.
func (r *FlattenedRow) Child() Row { return r.child }

// RowType implements Row.
func (r *FlattenedRow) RowType() rowtype.RowType { return r.rowType }

// HKey implements Row.
func (r *FlattenedRow) HKey() hkey.HKey { return r.hkey }

// NumFields implements Row.
func (r *FlattenedRow) NumFields() int { return r.rowType.NumFields() }

// Datum implements Row. Fields of a missing side are NULL.
func (r *FlattenedRow) Datum(i int) tree.Datum {
	n := r.rowType.Parent().NumFields()
	if i < n {
		if r.parent == nil {
			return tree.DNull
		}
		return r.parent.Datum(i)
	}
	if r.child == nil {
		return tree.DNull
	}
	return r.child.Datum(i - n)
}

// String implements fmt.Stringer.
func (r *FlattenedRow) String() string { return redact.StringWithoutMarkers(r) }

// SafeFormat implements redact.SafeFormatter.
func (r *FlattenedRow) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(r.rowType)
	formatDatums(w, r)
}

func formatDatums(w redact.SafePrinter, r Row) {
	w.SafeRune('(')
	for i, n := 0, r.NumFields(); i < n; i++ {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(r.Datum(i))
	}
	w.SafeRune(')')
}

// Datums returns the fields of r.
func Datums(r Row) tree.Datums {
	out := make(tree.Datums, r.NumFields())
	for i := range out {
		out[i] = r.Datum(i)
	}
	return out
}
