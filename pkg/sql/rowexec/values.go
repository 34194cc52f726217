// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/util/cancelchecker"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/cockroachdb/redact"
)

// ValuesScan produces a fixed list of rows in the given order.
type ValuesScan struct {
	rowType rowtype.RowType
	rows    []row.Row
}

var _ execinfra.Operator = (*ValuesScan)(nil)

// NewValuesScan returns an operator producing rows. If all rows are of one
// type, that is the operator's row type.
func NewValuesScan(rows ...row.Row) *ValuesScan {
	v := &ValuesScan{rows: rows}
	for i, r := range rows {
		if i == 0 {
			v.rowType = r.RowType()
		} else if r.RowType() != v.rowType {
			v.rowType = nil
			break
		}
	}
	return v
}

// Cursor implements execinfra.Operator.
func (v *ValuesScan) Cursor(flowCtx *execinfra.FlowCtx) execinfra.Cursor {
	return &valuesCursor{op: v, flowCtx: flowCtx}
}

// RowType implements execinfra.Operator.
func (v *ValuesScan) RowType() rowtype.RowType { return v.rowType }

// FindDerivedTypes implements execinfra.Operator.
func (v *ValuesScan) FindDerivedTypes(types *rowtype.Set) {
	for _, r := range v.rows {
		if _, ok := r.RowType().(*rowtype.FlattenedRowType); ok {
			types.Add(r.RowType())
		}
	}
}

// InputOperators implements execinfra.Operator.
func (v *ValuesScan) InputOperators() []execinfra.Operator { return nil }

// DescribePlan implements execinfra.Operator.
func (v *ValuesScan) DescribePlan() string { return v.String() }

// String implements fmt.Stringer.
func (v *ValuesScan) String() string { return redact.StringWithoutMarkers(v) }

// SafeFormat implements redact.SafeFormatter.
func (v *ValuesScan) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("values(%d rows)", len(v.rows))
}

type valuesCursor struct {
	op            *ValuesScan
	flowCtx       *execinfra.FlowCtx
	open          bool
	next          int
	cancelChecker cancelchecker.CancelChecker
}

func (c *valuesCursor) Open(ctx context.Context, _ *execinfra.Bindings) error {
	if m := c.flowCtx.Metrics; m != nil && m.ValuesScanOpens != nil {
		m.ValuesScanOpens.Inc(1)
	}
	log.VEventf(ctx, 2, "opening %s", c.op)
	c.cancelChecker.Reset(ctx)
	c.next = 0
	c.open = true
	return nil
}

func (c *valuesCursor) Next() (row.Row, error) {
	if !c.open {
		return nil, errors.AssertionFailedf("%s: Next called on a cursor that is not open", c.op)
	}
	if err := c.cancelChecker.Check(); err != nil {
		return nil, err
	}
	if c.next >= len(c.op.rows) {
		return nil, nil
	}
	r := c.op.rows[c.next]
	c.next++
	return r, nil
}

func (c *valuesCursor) Close() {
	c.open = false
}
