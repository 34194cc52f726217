// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package rowtype describes the shapes of rows flowing between operators.
package rowtype

import (
	"fmt"

	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
	"github.com/cockroachdb/redact"
)

// ID identifies a row type within its Schema.
type ID int

// SafeValue implements redact.SafeValue.
func (ID) SafeValue() {}

// RowType describes the fields and the hkey layout of a class of rows. Row
// types are compared by identity: two row types are equal iff they are the
// same object of the same Schema.
type RowType interface {
	fmt.Stringer
	redact.SafeFormatter

	// ID returns the type's identifier within its schema.
	ID() ID
	// Schema returns the registry the type belongs to.
	Schema() *Schema
	NumFields() int
	FieldType(i int) *types.T
	// FieldName returns the name of the i'th field, qualified by its table.
	FieldName(i int) string
	// HKeySegments returns the layout of the hkeys of rows of this type.
	HKeySegments() []catalog.HKeySegment
	// ParentOf returns whether rows of this type are the immediate hkey
	// parents of rows of the child type.
	ParentOf(child RowType) bool
	// Table returns the table whose rows determine the hkeys of this type.
	Table() *catalog.Table
}

// TableRowType is the row type of a table's rows.
type TableRowType struct {
	schema *Schema
	id     ID
	table  *catalog.Table
}

var _ RowType = (*TableRowType)(nil)

// ID implements RowType.
func (t *TableRowType) ID() ID { return t.id }

// Schema implements RowType.
func (t *TableRowType) Schema() *Schema { return t.schema }

// NumFields implements RowType.
func (t *TableRowType) NumFields() int { return len(t.table.Columns) }

// FieldType implements RowType.
func (t *TableRowType) FieldType(i int) *types.T { return t.table.Columns[i].Type }

// FieldName implements RowType.
func (t *TableRowType) FieldName(i int) string {
	return t.table.Name + "." + t.table.Columns[i].Name
}

// HKeySegments implements RowType.
func (t *TableRowType) HKeySegments() []catalog.HKeySegment { return t.table.HKeySegments() }

// ParentOf implements RowType.
func (t *TableRowType) ParentOf(child RowType) bool {
	if child == nil || child.Schema() != t.schema {
		return false
	}
	return child.Table().Parent == t.table
}

// Table implements RowType.
func (t *TableRowType) Table() *catalog.Table { return t.table }

// String implements fmt.Stringer.
func (t *TableRowType) String() string { return redact.StringWithoutMarkers(t) }

// SafeFormat implements redact.SafeFormatter.
func (t *TableRowType) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(t.table)
}

// FlattenedRowType is the type of rows combining a parent row and a child
// row. Its fields are the parent's followed by the child's. Its hkeys are
// those of the child type, which lets flattened rows act as parents of the
// child's own children.
type FlattenedRowType struct {
	schema *Schema
	id     ID
	parent RowType
	child  RowType
}

var _ RowType = (*FlattenedRowType)(nil)

// Parent returns the type of the left side.
func (t *FlattenedRowType) Parent() RowType { return t.parent }

// Child returns the type of the right side.
func (t *FlattenedRowType) Child() RowType { return t.child }

// ID implements RowType.
func (t *FlattenedRowType) ID() ID { return t.id }

// Schema implements RowType.
func (t *FlattenedRowType) Schema() *Schema { return t.schema }

// NumFields implements RowType.
func (t *FlattenedRowType) NumFields() int {
	return t.parent.NumFields() + t.child.NumFields()
}

// FieldType implements RowType.
func (t *FlattenedRowType) FieldType(i int) *types.T {
	if n := t.parent.NumFields(); i >= n {
		return t.child.FieldType(i - n)
	}
	return t.parent.FieldType(i)
}

// FieldName implements RowType.
func (t *FlattenedRowType) FieldName(i int) string {
	if n := t.parent.NumFields(); i >= n {
		return t.child.FieldName(i - n)
	}
	return t.parent.FieldName(i)
}

// HKeySegments implements RowType.
func (t *FlattenedRowType) HKeySegments() []catalog.HKeySegment { return t.child.HKeySegments() }

// ParentOf implements RowType.
func (t *FlattenedRowType) ParentOf(child RowType) bool { return t.child.ParentOf(child) }

// Table implements RowType.
func (t *FlattenedRowType) Table() *catalog.Table { return t.child.Table() }

// String implements fmt.Stringer.
func (t *FlattenedRowType) String() string { return redact.StringWithoutMarkers(t) }

// SafeFormat implements redact.SafeFormatter.
func (t *FlattenedRowType) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("flatten(%s, %s)", t.parent, t.child)
}
