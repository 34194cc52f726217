// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/hkey"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/testutils/grouptestutils"
	"github.com/cockroachdb/groupflow/pkg/util/cancelchecker"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

func (e *planTestEnv) rows(t *testing.T, input string) []row.Row {
	rows, err := grouptestutils.ParseRows(e.schema, e.group, input)
	require.NoError(t, err)
	return rows
}

func (e *planTestEnv) flatten(
	t *testing.T, input execinfra.Operator, parent, child string, j JoinType, opts FlattenOptions,
) *Flatten {
	f, err := NewFlatten(input, e.resolveType(t, parent), e.resolveType(t, child), j, opts)
	require.NoError(t, err)
	return f
}

func TestNewFlattenErrors(t *testing.T) {
	e := newPlanTestEnv()
	customer := e.resolveType(t, "customer")
	order := e.resolveType(t, "order")
	input := NewValuesScan()

	for _, tc := range []struct {
		name          string
		input         execinfra.Operator
		parent, child rowtype.RowType
		joinType      JoinType
		opts          FlattenOptions
		expected      string
		hint          bool
	}{
		{name: "no input", parent: customer, child: order, expected: "flatten requires an input"},
		{name: "no parent", input: input, child: order, expected: "flatten requires a parent and a child type"},
		{name: "no child", input: input, parent: customer, expected: "flatten requires a parent and a child type"},
		{name: "bad join", input: input, parent: customer, child: order, joinType: JoinType(9),
			expected: "invalid join type JoinType(9)"},
		{name: "reversed", input: input, parent: order, child: customer,
			expected: "order is not the parent of customer"},
		{name: "self", input: input, parent: customer, child: customer,
			expected: "customer is not the parent of customer"},
		{name: "shortens inner", input: input, parent: customer, child: order,
			opts: LeftJoinShortensHKey, expected: "LEFT_JOIN_SHORTENS_HKEY requires a left or full join, got INNER",
			hint: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFlatten(tc.input, tc.parent, tc.child, tc.joinType, tc.opts)
			require.EqualError(t, err, tc.expected)
			require.Equal(t, pgcode.InvalidParameterValue, pgerror.GetPGCode(err))
			if tc.hint {
				require.NotEmpty(t, errors.GetAllHints(err))
			}
		})
	}
}

func TestFlattenOperator(t *testing.T) {
	e := newPlanTestEnv()
	values := NewValuesScan(e.rows(t, "customer 1\norder 1 1")...)
	f := e.flatten(t, values, "customer", "order", FullJoin, KeepParent|KeepChild)
	require.Equal(t, "flatten(customer KEEP FULL order KEEP)", f.String())
	require.Equal(t, e.resolveType(t, "customer+order"), f.RowType())
	require.Equal(t, []execinfra.Operator{values}, f.InputOperators())

	g := e.flatten(t, f, "customer+order", "item", LeftJoin, LeftJoinShortensHKey)
	require.Equal(t, "flatten(flatten(customer, order) LEFT item, LEFT_JOIN_SHORTENS_HKEY)", g.String())
	require.Equal(t,
		"values(2 rows)\nflatten(customer KEEP FULL order KEEP)\nflatten(flatten(customer, order) LEFT item, LEFT_JOIN_SHORTENS_HKEY)",
		g.DescribePlan())

	var types rowtype.Set
	g.FindDerivedTypes(&types)
	require.Equal(t, []rowtype.RowType{f.RowType(), g.RowType()}, types.Sorted())
}

// TestFlattenLeftJoinFirstOnEqualHKey feeds a flatten a row whose hkey is the
// left join hkey of the held parent.
func TestFlattenLeftJoinFirstOnEqualHKey(t *testing.T) {
	ctx := context.Background()
	e := newPlanTestEnv()
	customer := e.rows(t, "customer 1")[0]
	co := e.schema.NewFlattenType(e.resolveType(t, "customer"), e.resolveType(t, "order"))

	var b hkey.Builder
	b.CopyFrom(customer.HKey())
	b.ExtendWithOrdinal(2)
	b.ExtendWithNull()
	other := row.NewFlattenedRow(co, customer, nil, b.HKey())

	f := e.flatten(t, NewValuesScan(customer, other), "customer", "order", LeftJoin, 0)
	rows, err := Collect(ctx, e.flowCtx(), f, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, f.RowType(), rows[0].RowType())
	require.Nil(t, rows[0].(*row.FlattenedRow).Child())
	require.True(t, rows[0].HKey().Equal(other.HKey()))
	require.Same(t, other, rows[1])
}

func TestFlattenIncompatibleRow(t *testing.T) {
	ctx := context.Background()
	e := newPlanTestEnv()
	values := NewValuesScan(e.rows(t, "customer 1\ncustomer 2\norder 2 20\nitem 2 20 1")...)
	shortened := e.flatten(t, values, "customer", "order", LeftJoin, LeftJoinShortensHKey)
	f := e.flatten(t, shortened, "customer+order", "item", FullJoin, KeepChild)

	_, err := Collect(ctx, e.flowCtx(), f, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIncompatibleRow))
	require.Equal(t, pgcode.ObjectNotInPrerequisiteState, pgerror.GetPGCode(err))
	require.Contains(t, err.Error(), "parent hkey /1/1 has 1 segments, expected 2")
	require.NotEmpty(t, errors.GetAllHints(err))
}

func TestFlattenCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newPlanTestEnv()
	values := NewValuesScan(e.rows(t, "customer 1\norder 1 10\norder 1 11")...)
	f := e.flatten(t, values, "customer", "order", InnerJoin, 0)

	c := f.Cursor(e.flowCtx())
	require.NoError(t, c.Open(ctx, nil))
	defer c.Close()
	r, err := c.Next()
	require.NoError(t, err)
	require.NotNil(t, r)

	cancel()
	_, err = c.Next()
	require.True(t, errors.Is(err, cancelchecker.QueryCanceledError))
	require.Equal(t, pgcode.QueryCanceled, pgerror.GetPGCode(err))
}

func TestFlattenCursorLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newPlanTestEnv()
	values := NewValuesScan(e.rows(t, "customer 1\ncustomer 2\norder 2 20")...)
	f := e.flatten(t, values, "customer", "order", LeftJoin, KeepParent)
	flowCtx := e.flowCtx()

	c := f.Cursor(flowCtx)
	_, err := c.Next()
	require.True(t, errors.IsAssertionFailure(err))

	var runs []string
	for i := 0; i < 2; i++ {
		require.NoError(t, c.Open(ctx, nil))
		var out []row.Row
		for {
			r, err := c.Next()
			require.NoError(t, err)
			if r == nil {
				break
			}
			out = append(out, r)
		}
		// Exhausted cursors keep returning nil.
		r, err := c.Next()
		require.NoError(t, err)
		require.Nil(t, r)
		c.Close()
		c.Close()
		runs = append(runs, grouptestutils.FormatRows(out))
	}
	require.Equal(t, runs[0], runs[1])
	require.Equal(t, 4, strings.Count(runs[0], "\n"))
	require.Equal(t, int64(2), e.metrics.FlattenOpens.Count())
	require.Equal(t, int64(2), e.metrics.ValuesScanOpens.Count())
	require.Equal(t, int64(2), e.metrics.FlattenPendingHighWater.Value())

	// Closing a cursor part way through discards what it held.
	require.NoError(t, c.Open(ctx, nil))
	_, err = c.Next()
	require.NoError(t, err)
	c.Close()
	fc := c.(*flattenCursor)
	require.Equal(t, 0, fc.pending.Len())
	require.False(t, fc.parent.IsHolding())
	require.Equal(t, flattenNoParent, fc.state)
}

// TestFlattenLeftJoinHKeysNotAliased checks that left join rows keep their
// hkeys after the cursor moves on to other parents.
func TestFlattenLeftJoinHKeysNotAliased(t *testing.T) {
	ctx := context.Background()
	e := newPlanTestEnv()
	var input []string
	for i := 1; i <= 5; i++ {
		input = append(input, fmt.Sprintf("customer %d", i))
	}
	f := e.flatten(t, NewValuesScan(e.rows(t, strings.Join(input, "\n"))...), "customer", "order", LeftJoin, 0)

	c := f.Cursor(e.flowCtx())
	require.NoError(t, c.Open(ctx, nil))
	defer c.Close()
	var out []row.Row
	for {
		r, err := c.Next()
		require.NoError(t, err)
		if r == nil {
			break
		}
		out = append(out, r)
	}
	// Scribble over the cursor's working key.
	fc := c.(*flattenCursor)
	fc.leftJoinHKey.Reset()
	fc.leftJoinHKey.ExtendWithOrdinal(7)

	require.Len(t, out, 5)
	for i, r := range out {
		require.Equal(t, fmt.Sprintf("/1/%d/2/NULL", i+1), r.HKey().String())
		require.True(t, r.(*row.FlattenedRow).Parent().HKey().IsAncestorOf(r.HKey()))
	}
}

// flattenCounts tallies a flatten's output by kind.
type flattenCounts struct {
	Parents, Children, Inner, Left, Right, Other int
}

// groupGen generates hkey-ordered rows of the coi group, some of which lack
// their parents.
type groupGen struct {
	rng *rand.Rand
	e   *planTestEnv
}

func (g groupGen) rows(t *testing.T) []row.Row {
	var lines []string
	keep := func(line string) bool {
		if g.rng.Intn(5) == 0 {
			return false
		}
		lines = append(lines, line)
		return true
	}
	numCustomers := 1 + g.rng.Intn(6)
	for cid := 1; cid <= numCustomers; cid++ {
		keep(fmt.Sprintf("customer %d", cid))
		numOrders := g.rng.Intn(4)
		for oid := 1; oid <= numOrders; oid++ {
			if !keep(fmt.Sprintf("order %d %d", cid, oid)) {
				// Items of missing orders would precede the customer's other
				// orders and end its left join early.
				continue
			}
			numItems := g.rng.Intn(3)
			for iid := 1; iid <= numItems; iid++ {
				keep(fmt.Sprintf("item %d %d %d", cid, oid, iid))
			}
		}
		numAddresses := g.rng.Intn(3)
		for aid := 1; aid <= numAddresses; aid++ {
			keep(fmt.Sprintf("address %d %d", cid, aid))
		}
	}
	rows := g.e.rows(t, strings.Join(lines, "\n"))
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].HKey().Compare(rows[j].HKey()) < 0 })
	return rows
}

// expectedCounts derives the output of a customer/order flatten from its
// input.
func expectedCounts(input []row.Row, f *Flatten) flattenCounts {
	var c flattenCounts
	customers := make(map[string]bool)
	ordersOf := make(map[string]int)
	for _, r := range input {
		switch r.RowType() {
		case f.parentType:
			customers[r.HKey().String()] = true
		case f.childType:
			ordersOf[r.HKey().Prefix(1).String()]++
		}
	}
	for _, r := range input {
		switch r.RowType() {
		case f.parentType:
			if f.keepParent {
				c.Parents++
			}
			if f.leftJoin && ordersOf[r.HKey().String()] == 0 {
				c.Left++
			}
		case f.childType:
			if f.keepChild {
				c.Children++
			}
			if customers[r.HKey().Prefix(1).String()] {
				c.Inner++
			} else if f.rightJoin {
				c.Right++
			}
		default:
			c.Other++
		}
	}
	return c
}

func TestFlattenRandomized(t *testing.T) {
	ctx := context.Background()
	e := newPlanTestEnv()
	seed := rand.Int63()
	t.Logf("seed %d", seed)
	gen := groupGen{rng: rand.New(rand.NewSource(seed)), e: e}

	for i := 0; i < 200; i++ {
		input := gen.rows(t)
		joinType := JoinType(gen.rng.Intn(4))
		opts := FlattenOptions(gen.rng.Intn(4))
		if joinType.IsLeft() && gen.rng.Intn(2) == 0 {
			opts |= LeftJoinShortensHKey
		}
		f := e.flatten(t, NewValuesScan(input...), "customer", "order", joinType, opts)

		c := f.Cursor(e.flowCtx())
		require.NoError(t, c.Open(ctx, nil))
		var out []row.Row
		for {
			r, err := c.Next()
			require.NoError(t, err)
			if r == nil {
				break
			}
			out = append(out, r)
		}
		highWater := c.(*flattenCursor).pending.HighWater()
		c.Close()

		bound := maxPendingRows
		if joinType == FullJoin && opts.Has(KeepChild) {
			bound++
		}
		require.LessOrEqual(t, highWater, bound, "%s", f)

		var actual flattenCounts
		for j, r := range out {
			if !opts.Has(LeftJoinShortensHKey) && j > 0 {
				require.LessOrEqual(t, out[j-1].HKey().Compare(r.HKey()), 0,
					"%s: %s before %s", f, out[j-1].HKey(), r.HKey())
			}
			switch r.RowType() {
			case f.parentType:
				actual.Parents++
			case f.childType:
				actual.Children++
			case f.flattenType:
				fr := r.(*row.FlattenedRow)
				switch {
				case fr.Parent() == nil:
					actual.Right++
					require.True(t, fr.Child().HKey().Equal(r.HKey()))
				case fr.Child() == nil:
					actual.Left++
					require.True(t, fr.Parent().HKey().IsAncestorOf(r.HKey()))
				default:
					actual.Inner++
					require.True(t, fr.Parent().HKey().IsAncestorOf(fr.Child().HKey()))
					require.True(t, fr.Child().HKey().Equal(r.HKey()))
				}
			default:
				actual.Other++
			}
		}
		if expected := expectedCounts(input, f); expected != actual {
			t.Fatalf("%s over\n%s: %v", f, grouptestutils.FormatRows(input), pretty.Diff(expected, actual))
		}
	}
}
