// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/redact"
)

// Filter passes through the rows of its input whose type is one of a given
// set, preserving their order.
type Filter struct {
	input execinfra.Operator
	keep  rowtype.Set
}

var _ execinfra.Operator = (*Filter)(nil)

// NewFilter returns a filter keeping rows of the given types.
func NewFilter(input execinfra.Operator, keepTypes ...rowtype.RowType) *Filter {
	f := &Filter{input: input}
	for _, rt := range keepTypes {
		f.keep.Add(rt)
	}
	return f
}

// Cursor implements execinfra.Operator.
func (f *Filter) Cursor(flowCtx *execinfra.FlowCtx) execinfra.Cursor {
	return &filterCursor{op: f, input: f.input.Cursor(flowCtx)}
}

// RowType implements execinfra.Operator.
func (f *Filter) RowType() rowtype.RowType { return nil }

// FindDerivedTypes implements execinfra.Operator.
func (f *Filter) FindDerivedTypes(types *rowtype.Set) { f.input.FindDerivedTypes(types) }

// InputOperators implements execinfra.Operator.
func (f *Filter) InputOperators() []execinfra.Operator {
	return []execinfra.Operator{f.input}
}

// DescribePlan implements execinfra.Operator.
func (f *Filter) DescribePlan() string { return execinfra.DescribeInputs(f) }

// String implements fmt.Stringer.
func (f *Filter) String() string { return redact.StringWithoutMarkers(f) }

// SafeFormat implements redact.SafeFormatter.
func (f *Filter) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("filter(")
	for i, rt := range f.keep.Sorted() {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(rt)
	}
	w.SafeRune(')')
}

type filterCursor struct {
	op    *Filter
	input execinfra.Cursor
}

func (c *filterCursor) Open(ctx context.Context, bindings *execinfra.Bindings) error {
	return c.input.Open(ctx, bindings)
}

func (c *filterCursor) Next() (row.Row, error) {
	for {
		r, err := c.input.Next()
		if err != nil || r == nil {
			return nil, err
		}
		if c.op.keep.Contains(r.RowType()) {
			return r, nil
		}
	}
}

func (c *filterCursor) Close() { c.input.Close() }
