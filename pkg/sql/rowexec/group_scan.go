// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/storage"
	"github.com/cockroachdb/groupflow/pkg/util/cancelchecker"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// NoBranch is the branch binding of a scan of the whole group.
const NoBranch = -1

// GroupScan reads the rows of a group from the store in hkey order. With a
// branch binding, it reads only the row whose hkey is bound at that position
// and its descendants.
type GroupScan struct {
	group         *catalog.Group
	branchBinding int
}

var _ execinfra.Operator = (*GroupScan)(nil)

// NewGroupScan returns a scan of the group. branchBinding is NoBranch or the
// position of an hkey in the bindings.
func NewGroupScan(group *catalog.Group, branchBinding int) *GroupScan {
	return &GroupScan{group: group, branchBinding: branchBinding}
}

// Cursor implements execinfra.Operator.
func (s *GroupScan) Cursor(flowCtx *execinfra.FlowCtx) execinfra.Cursor {
	return &groupScanCursor{op: s, flowCtx: flowCtx}
}

// RowType implements execinfra.Operator. A scan produces rows of every table
// of the group.
func (s *GroupScan) RowType() rowtype.RowType { return nil }

// FindDerivedTypes implements execinfra.Operator. Table rows are not derived.
func (s *GroupScan) FindDerivedTypes(*rowtype.Set) {}

// InputOperators implements execinfra.Operator.
func (s *GroupScan) InputOperators() []execinfra.Operator { return nil }

// DescribePlan implements execinfra.Operator.
func (s *GroupScan) DescribePlan() string { return s.String() }

// String implements fmt.Stringer.
func (s *GroupScan) String() string { return redact.StringWithoutMarkers(s) }

// SafeFormat implements redact.SafeFormatter.
func (s *GroupScan) SafeFormat(w redact.SafePrinter, _ rune) {
	if s.branchBinding == NoBranch {
		w.Printf("group_scan(%s)", redact.SafeString(s.group.Name))
		return
	}
	w.Printf("group_scan(%s, branch $%d)", redact.SafeString(s.group.Name), s.branchBinding)
}

type groupScanCursor struct {
	op            *GroupScan
	flowCtx       *execinfra.FlowCtx
	iter          storage.RowIterator
	cancelChecker cancelchecker.CancelChecker
}

func (c *groupScanCursor) Open(ctx context.Context, bindings *execinfra.Bindings) error {
	if c.flowCtx.Store == nil {
		return errors.AssertionFailedf("%s: flow has no store", c.op)
	}
	if m := c.flowCtx.Metrics; m != nil && m.GroupScanOpens != nil {
		m.GroupScanOpens.Inc(1)
	}
	span := storage.GroupSpan(c.op.group)
	if c.op.branchBinding != NoBranch {
		k, ok := bindings.HKey(c.op.branchBinding)
		if !ok {
			return pgerror.Newf(pgcode.InvalidParameterValue,
				"%s: no hkey bound at position %d", c.op, c.op.branchBinding)
		}
		var err error
		if span, err = storage.BranchSpan(c.op.group, k); err != nil {
			return err
		}
	}
	ctx = logtags.AddTag(ctx, "scan", redact.SafeString(c.op.group.Name))
	log.VEventf(ctx, 2, "opening %s over %s", c.op, span)
	iter, err := c.flowCtx.Store.NewGroupIterator(ctx, c.op.group, span)
	if err != nil {
		return err
	}
	if c.iter != nil {
		c.iter.Close()
	}
	c.iter = iter
	c.cancelChecker.Reset(ctx)
	return nil
}

func (c *groupScanCursor) Next() (row.Row, error) {
	if c.iter == nil {
		return nil, errors.AssertionFailedf("%s: Next called on a cursor that is not open", c.op)
	}
	if err := c.cancelChecker.Check(); err != nil {
		return nil, err
	}
	r, err := c.iter.Next()
	if err != nil || r == nil {
		return nil, err
	}
	if m := c.flowCtx.Metrics; m != nil && m.GroupScanRows != nil {
		m.GroupScanRows.Inc(1)
	}
	return r, nil
}

func (c *groupScanCursor) Close() {
	if c.iter != nil {
		c.iter.Close()
		c.iter = nil
	}
}
