// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
)

// Collect runs op to completion and returns its rows. The cursor is closed
// whether or not an error occurs.
func Collect(
	ctx context.Context, flowCtx *execinfra.FlowCtx, op execinfra.Operator, bindings *execinfra.Bindings,
) ([]row.Row, error) {
	var rows []row.Row
	err := Run(ctx, flowCtx, op, bindings, func(r row.Row) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Run opens a cursor of op and calls fn with every row it produces. It stops
// at the first error, from the cursor or from fn, and always closes the
// cursor.
func Run(
	ctx context.Context,
	flowCtx *execinfra.FlowCtx,
	op execinfra.Operator,
	bindings *execinfra.Bindings,
	fn func(row.Row) error,
) error {
	c := op.Cursor(flowCtx)
	defer c.Close()
	if err := c.Open(ctx, bindings); err != nil {
		return err
	}
	for {
		r, err := c.Next()
		if err != nil {
			return err
		}
		if r == nil {
			return nil
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}
