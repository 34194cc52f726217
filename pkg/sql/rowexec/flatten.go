// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/hkey"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowcontainer"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/util/cancelchecker"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// maxPendingRows bounds the rows a flatten cursor queues: a kept parent and a
// generated left join row, or a kept child and the row flattened from it.
const maxPendingRows = 2

// ErrIncompatibleRow marks errors raised when a flatten receives a parent
// whose hkey was shortened by an upstream flatten.
var ErrIncompatibleRow = errors.New("incompatible row")

// Flatten combines parent and child rows of one group into flattened rows.
// Its input is a single hkey-ordered stream in which each parent row is
// followed by its children, before the next parent row. Rows of types other
// than the parent and child types are passed through.
//
// A child row is flattened with the last parent row if the parent's hkey is
// a prefix of the child's, and the flattened row takes the child's hkey. A
// left join emits a parent without children once the input shows that no
// child can follow it, with the hkey a NULL child would have: the parent's
// hkey extended with the child ordinal and a NULL per child key column.
type Flatten struct {
	input       execinfra.Operator
	parentType  rowtype.RowType
	childType   rowtype.RowType
	flattenType *rowtype.FlattenedRowType
	joinType    JoinType
	options     FlattenOptions

	leftJoin   bool
	rightJoin  bool
	keepParent bool
	keepChild  bool
	shortens   bool

	// These describe the hkey of left join rows.
	childOrdinal       int
	nChildKeyColumns   int
	parentHKeySegments int
}

var _ execinfra.Operator = (*Flatten)(nil)

// NewFlatten creates a flatten of parentType and childType rows produced by
// input. parentType must be the immediate parent of childType.
func NewFlatten(
	input execinfra.Operator,
	parentType rowtype.RowType,
	childType rowtype.RowType,
	joinType JoinType,
	options FlattenOptions,
) (*Flatten, error) {
	if input == nil {
		return nil, pgerror.New(pgcode.InvalidParameterValue, "flatten requires an input")
	}
	if parentType == nil || childType == nil {
		return nil, pgerror.New(pgcode.InvalidParameterValue, "flatten requires a parent and a child type")
	}
	if !joinType.valid() {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue, "invalid join type %s", joinType)
	}
	if !parentType.ParentOf(childType) {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue,
			"%s is not the parent of %s", parentType, childType)
	}
	if options.Has(LeftJoinShortensHKey) && !joinType.IsLeft() {
		return nil, errors.WithHint(
			pgerror.Newf(pgcode.InvalidParameterValue,
				"LEFT_JOIN_SHORTENS_HKEY requires a left or full join, got %s", joinType),
			"Drop the option or use a LEFT or FULL join.")
	}
	childSegments := childType.HKeySegments()
	last := childSegments[len(childSegments)-1]
	return &Flatten{
		input:              input,
		parentType:         parentType,
		childType:          childType,
		flattenType:        parentType.Schema().NewFlattenType(parentType, childType),
		joinType:           joinType,
		options:            options,
		leftJoin:           joinType.IsLeft(),
		rightJoin:          joinType.IsRight(),
		keepParent:         options.Has(KeepParent),
		keepChild:          options.Has(KeepChild),
		shortens:           options.Has(LeftJoinShortensHKey),
		childOrdinal:       last.Table.Ordinal,
		nChildKeyColumns:   last.NumColumns,
		parentHKeySegments: len(parentType.HKeySegments()),
	}, nil
}

// Cursor implements execinfra.Operator.
func (f *Flatten) Cursor(flowCtx *execinfra.FlowCtx) execinfra.Cursor {
	capacity := maxPendingRows
	if f.leftJoin && f.rightJoin && f.keepChild {
		// An orphan child right after a parent without children queues the
		// left join row, the kept child and the right join row.
		capacity++
	}
	return &flattenCursor{
		op:      f,
		flowCtx: flowCtx,
		input:   f.input.Cursor(flowCtx),
		pending: rowcontainer.MakePendingRows(capacity),
	}
}

// RowType implements execinfra.Operator.
func (f *Flatten) RowType() rowtype.RowType { return f.flattenType }

// FindDerivedTypes implements execinfra.Operator.
func (f *Flatten) FindDerivedTypes(types *rowtype.Set) {
	f.input.FindDerivedTypes(types)
	types.Add(f.flattenType)
}

// InputOperators implements execinfra.Operator.
func (f *Flatten) InputOperators() []execinfra.Operator {
	return []execinfra.Operator{f.input}
}

// DescribePlan implements execinfra.Operator.
func (f *Flatten) DescribePlan() string { return execinfra.DescribeInputs(f) }

// String implements fmt.Stringer.
func (f *Flatten) String() string { return redact.StringWithoutMarkers(f) }

// SafeFormat implements redact.SafeFormatter.
func (f *Flatten) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("flatten(%s", f.parentType)
	if f.keepParent {
		w.SafeString(" KEEP")
	}
	w.Printf(" %s %s", f.joinType, f.childType)
	if f.keepChild {
		w.SafeString(" KEEP")
	}
	if f.shortens {
		w.SafeString(", LEFT_JOIN_SHORTENS_HKEY")
	}
	w.SafeRune(')')
}

// flattenState tracks the parent row the cursor holds, if any.
type flattenState int

const (
	// flattenNoParent means no parent row is held.
	flattenNoParent flattenState = iota
	// flattenParentChildless means a parent row is held and none of its
	// children has been seen yet.
	flattenParentChildless
	// flattenParentHasChild means a parent row is held and it was already
	// emitted, either with a child or as a left join row.
	flattenParentHasChild
)

func (s flattenState) String() string {
	switch s {
	case flattenNoParent:
		return "no-parent"
	case flattenParentChildless:
		return "parent-childless"
	case flattenParentHasChild:
		return "parent-has-child"
	}
	return "unknown"
}

// rowClass is the role an input row plays in the flatten.
type rowClass int

const (
	otherRow rowClass = iota
	parentRow
	childRow
)

func (f *Flatten) classify(r row.Row) rowClass {
	switch r.RowType() {
	case f.parentType:
		return parentRow
	case f.childType:
		return childRow
	}
	return otherRow
}

type flattenCursor struct {
	op      *Flatten
	flowCtx *execinfra.FlowCtx
	input   execinfra.Cursor
	ctx     context.Context

	open      bool
	inputDone bool
	state     flattenState
	parent    row.Holder
	pending   rowcontainer.PendingRows
	// leftJoinHKey is the hkey of the left join row of the held parent. It is
	// overwritten for every parent; rows get copies of it.
	leftJoinHKey  hkey.Builder
	cancelChecker cancelchecker.CancelChecker
}

var _ execinfra.Cursor = (*flattenCursor)(nil)

// Open implements execinfra.Cursor.
func (c *flattenCursor) Open(ctx context.Context, bindings *execinfra.Bindings) error {
	c.ctx = logtags.AddTag(ctx, "flatten", nil)
	if m := c.flowCtx.Metrics; m != nil && m.FlattenOpens != nil {
		m.FlattenOpens.Inc(1)
	}
	c.reset()
	c.cancelChecker.Reset(ctx)
	log.VEventf(c.ctx, 2, "opening %s", c.op)
	if err := c.input.Open(ctx, bindings); err != nil {
		return err
	}
	c.open = true
	return nil
}

func (c *flattenCursor) reset() {
	c.inputDone = false
	c.state = flattenNoParent
	c.parent.Release()
	c.pending.Clear()
	c.leftJoinHKey.Reset()
}

// Next implements execinfra.Cursor.
func (c *flattenCursor) Next() (row.Row, error) {
	if !c.open {
		return nil, errors.AssertionFailedf("%s: Next called on a cursor that is not open", c.op)
	}
	if err := c.cancelChecker.Check(); err != nil {
		return nil, err
	}
	out := c.pending.Take()
	for out == nil && (!c.inputDone || c.parent.IsHolding()) {
		var in row.Row
		if !c.inputDone {
			var err error
			if in, err = c.input.Next(); err != nil {
				return nil, err
			}
			c.inputDone = in == nil
		}
		if c.readyForLeftJoinRow(in) {
			if err := c.emitLeftJoinRow(); err != nil {
				return nil, err
			}
		}
		if in == nil {
			// The input is exhausted and the held parent, if it needed a left
			// join row, got it above.
			c.setParent(nil)
		} else {
			c.processInputRow(in)
		}
		out = c.pending.Take()
	}
	return out, nil
}

func (c *flattenCursor) processInputRow(in row.Row) {
	switch c.op.classify(in) {
	case parentRow:
		if c.op.keepParent {
			c.pending.Add(in)
		}
		c.setParent(in)

	case childRow:
		if c.op.keepChild {
			c.pending.Add(in)
		}
		if p := c.parent.Get(); p != nil && p.HKey().IsAncestorOf(in.HKey()) {
			c.pending.Add(row.NewFlattenedRow(c.op.flattenType, p, in, in.HKey()))
			c.state = flattenParentHasChild
			if log.V(3) {
				log.Infof(c.ctx, "flattened %s with parent %s", in.HKey(), p.HKey())
			}
			return
		}
		// The child's parent is not in the input.
		c.setParent(nil)
		if c.op.rightJoin {
			c.pending.Add(row.NewFlattenedRow(c.op.flattenType, nil, in, in.HKey()))
		}
		if log.V(3) {
			log.Infof(c.ctx, "orphan child %s", in.HKey())
		}

	default:
		c.pending.Add(in)
	}
}

// readyForLeftJoinRow returns whether the held parent is known to have no
// children, given the next input row (nil at the end of the input).
func (c *flattenCursor) readyForLeftJoinRow(in row.Row) bool {
	if !c.op.leftJoin || c.state != flattenParentChildless {
		return false
	}
	if in == nil || !c.parent.Get().HKey().IsAncestorOf(in.HKey()) {
		return true
	}
	if c.op.classify(in) == childRow {
		// A child of the held parent.
		return false
	}
	// A descendant of another type. It sorts at or after the position of
	// the parent's first child unless its hkey is smaller than the left join
	// hkey. Equal hkeys, e.g. a child row and a flattened row built from it,
	// have no defined order; the left join row goes first.
	return c.leftJoinHKey.Compare(in.HKey()) <= 0
}

func (c *flattenCursor) emitLeftJoinRow() error {
	p := c.parent.Get()
	var k hkey.HKey
	if c.op.shortens {
		k = p.HKey()
	} else {
		if n := p.HKey().NumSegments(); n < c.op.parentHKeySegments {
			err := pgerror.Newf(pgcode.ObjectNotInPrerequisiteState,
				"%s: parent hkey %s has %d segments, expected %d: it has been shortened "+
					"by an earlier flatten, so this flatten should specify LEFT_JOIN_SHORTENS_HKEY also",
				c.op, p.HKey(), redact.Safe(n), redact.Safe(c.op.parentHKeySegments))
			err = errors.WithHint(err,
				"Set LEFT_JOIN_SHORTENS_HKEY on every left join flatten above the one that shortens hkeys.")
			return errors.Mark(err, ErrIncompatibleRow)
		}
		k = c.leftJoinHKey.HKey()
	}
	c.pending.Add(row.NewFlattenedRow(c.op.flattenType, p, nil, k))
	// Only one left join row per parent.
	c.state = flattenParentHasChild
	if log.V(3) {
		log.Infof(c.ctx, "left join row %s for childless parent %s", k, p.HKey())
	}
	return nil
}

func (c *flattenCursor) setParent(p row.Row) {
	c.parent.Hold(p)
	if p == nil {
		c.state = flattenNoParent
		return
	}
	c.state = flattenParentChildless
	if c.op.leftJoin {
		c.leftJoinHKey.CopyFrom(p.HKey())
		c.leftJoinHKey.ExtendWithOrdinal(c.op.childOrdinal)
		for i := 0; i < c.op.nChildKeyColumns; i++ {
			c.leftJoinHKey.ExtendWithNull()
		}
	}
}

// Close implements execinfra.Cursor.
func (c *flattenCursor) Close() {
	if c.open {
		if m := c.flowCtx.Metrics; m != nil && m.FlattenPendingHighWater != nil {
			if hw := int64(c.pending.HighWater()); hw > m.FlattenPendingHighWater.Value() {
				m.FlattenPendingHighWater.Update(hw)
			}
		}
		log.VEventf(c.ctx, 2, "closing %s in state %s", c.op, redact.SafeString(c.state.String()))
	}
	c.open = false
	c.reset()
	c.input.Close()
}
