// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package execinfra defines the contract shared by the execution operators:
// an Operator is an immutable node of a plan tree and a Cursor is one
// execution of it.
package execinfra

import (
	"context"
	"fmt"

	"github.com/cockroachdb/groupflow/pkg/sql/hkey"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/storage"
)

// Operator is a node of a plan. Its methods other than Cursor are metadata
// queries with no side effects.
type Operator interface {
	fmt.Stringer

	// Cursor returns a new, unopened cursor executing the operator.
	Cursor(flowCtx *FlowCtx) Cursor
	// RowType returns the type of the rows the operator produces itself, or
	// nil if it only forwards rows of its inputs.
	RowType() rowtype.RowType
	// FindDerivedTypes adds the types of the rows created in the subtree
	// rooted at the operator.
	FindDerivedTypes(types *rowtype.Set)
	// InputOperators returns the direct inputs of the operator.
	InputOperators() []Operator
	// DescribePlan renders the subtree rooted at the operator, inputs first,
	// one operator per line.
	DescribePlan() string
}

// Cursor is a single-threaded, pull-based iterator over the output of an
// operator.
//
// Open may be called again after Close to restart the cursor. Next returns
// a nil row at the end of the stream. Close must be called even if Open or
// Next returned an error; calling it more than once is allowed.
type Cursor interface {
	Open(ctx context.Context, bindings *Bindings) error
	Next() (row.Row, error)
	Close()
}

// Bindings holds the values a plan is parameterized with. Operators forward
// it to their inputs unchanged.
type Bindings struct {
	hkeys map[int]hkey.HKey
}

// SetHKey binds an hkey at the given position.
func (b *Bindings) SetHKey(pos int, k hkey.HKey) {
	if b.hkeys == nil {
		b.hkeys = make(map[int]hkey.HKey)
	}
	b.hkeys[pos] = k
}

// HKey returns the hkey bound at the given position.
func (b *Bindings) HKey(pos int) (hkey.HKey, bool) {
	if b == nil {
		return hkey.HKey{}, false
	}
	k, ok := b.hkeys[pos]
	return k, ok
}

// FlowCtx is the environment cursors run in.
type FlowCtx struct {
	// Store serves the rows read by scans.
	Store   storage.Reader
	Metrics *Metrics
}

// DescribeInputs renders the plans of an operator's inputs followed by the
// operator itself.
func DescribeInputs(op Operator) string {
	var s string
	for _, in := range op.InputOperators() {
		s += in.DescribePlan() + "\n"
	}
	return s + op.String()
}
