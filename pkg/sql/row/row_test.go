// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package row_test

import (
	"testing"

	"github.com/cockroachdb/groupflow/pkg/sql/catalog/coi"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func i(v int64) tree.Datum  { return tree.NewDInt(tree.DInt(v)) }
func s(v string) tree.Datum { return tree.NewDString(v) }

type fixture struct {
	customer, order, item *rowtype.TableRowType
	co                    *rowtype.FlattenedRowType
}

func makeFixture(t *testing.T) fixture {
	g := coi.NewGroup()
	sch := rowtype.NewSchema(g)
	get := func(name string) *rowtype.TableRowType {
		tab, ok := g.Table(name)
		require.True(t, ok)
		return sch.TableRowType(tab)
	}
	f := fixture{customer: get("customer"), order: get("order"), item: get("item")}
	f.co = sch.NewFlattenType(f.customer, f.order)
	return f
}

func TestTableRow(t *testing.T) {
	f := makeFixture(t)
	d, err := tree.ParseDDecimal("12.50")
	require.NoError(t, err)

	r, err := row.NewTableRow(f.order, i(1), i(10), d)
	require.NoError(t, err)
	require.Equal(t, "/1/1/2/10", r.HKey().String())
	require.Equal(t, "order(1, 10, 12.50)", r.String())
	require.Equal(t, 3, r.NumFields())
	require.Same(t, f.order, r.RowType())

	it, err := row.NewTableRow(f.item, i(1), i(10), i(3), tree.DNull)
	require.NoError(t, err)
	require.Equal(t, "/1/1/2/10/3/3", it.HKey().String())
	require.True(t, r.HKey().IsAncestorOf(it.HKey()))

	c, err := row.NewTableRow(f.customer, i(1), s("alice"))
	require.NoError(t, err)
	require.Equal(t, "customer(1, 'alice')", c.String())
	require.Contains(t, string(redact.Sprint(c).Redact()), "‹×›")
}

func TestTableRowErrors(t *testing.T) {
	f := makeFixture(t)
	for _, tc := range []struct {
		name   string
		datums tree.Datums
		code   pgcode.Code
	}{
		{"arity", tree.Datums{i(1)}, pgcode.InvalidParameterValue},
		{"missing", tree.Datums{i(1), nil}, pgcode.InvalidParameterValue},
		{"type", tree.Datums{s("1"), s("alice")}, pgcode.DatatypeMismatch},
		{"null key", tree.Datums{tree.DNull, s("alice")}, pgcode.NotNullViolation},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := row.NewTableRow(f.customer, tc.datums...)
			require.Error(t, err)
			require.Equal(t, tc.code, pgerror.GetPGCode(err))
		})
	}
	// Non-key columns may be NULL.
	_, err := row.NewTableRow(f.customer, i(1), tree.DNull)
	require.NoError(t, err)
}

func TestFlattenedRow(t *testing.T) {
	f := makeFixture(t)
	c, err := row.NewTableRow(f.customer, i(1), s("alice"))
	require.NoError(t, err)
	o, err := row.NewTableRow(f.order, i(1), i(10), tree.DNull)
	require.NoError(t, err)

	both := row.NewFlattenedRow(f.co, c, o, o.HKey())
	require.Equal(t, "flatten(customer, order)(1, 'alice', 1, 10, NULL)", both.String())
	require.Equal(t, 5, both.NumFields())
	require.Same(t, c, both.Parent())
	require.Same(t, o, both.Child())

	left := row.NewFlattenedRow(f.co, c, nil, c.HKey())
	require.Equal(t, tree.Datums{i(1), s("alice"), tree.DNull, tree.DNull, tree.DNull}, row.Datums(left))

	right := row.NewFlattenedRow(f.co, nil, o, o.HKey())
	require.Equal(t, "flatten(customer, order)(NULL, NULL, 1, 10, NULL)", right.String())
	require.Equal(t, "/1/1/2/10", right.HKey().String())
}

func TestHolder(t *testing.T) {
	f := makeFixture(t)
	c1, err := row.NewTableRow(f.customer, i(1), s("a"))
	require.NoError(t, err)
	c2, err := row.NewTableRow(f.customer, i(2), s("b"))
	require.NoError(t, err)

	var h row.Holder
	require.False(t, h.IsHolding())
	require.Nil(t, h.Get())
	h.Hold(c1)
	require.True(t, h.IsHolding())
	require.Same(t, c1, h.Get())
	h.Hold(c2)
	require.Same(t, c2, h.Get())
	h.Hold(nil)
	require.False(t, h.IsHolding())
	h.Hold(c1)
	h.Release()
	h.Release()
	require.Nil(t, h.Get())
}

func TestParseTableRow(t *testing.T) {
	f := makeFixture(t)
	r, err := row.ParseTableRow(f.order, "1", "10")
	require.NoError(t, err)
	require.Equal(t, "order(1, 10, NULL)", r.String())

	r, err = row.ParseTableRow(f.order, "1", "11", "3.25")
	require.NoError(t, err)
	require.Equal(t, "order(1, 11, 3.25)", r.String())

	_, err = row.ParseTableRow(f.order, "1", "x")
	require.Error(t, err)
	require.Equal(t, pgcode.InvalidParameterValue, pgerror.GetPGCode(err))
	require.Contains(t, err.Error(), "parsing order.oid")

	_, err = row.ParseTableRow(f.customer, "1", "a", "b")
	require.Error(t, err)

	_, err = row.ParseTableRow(f.order, "1")
	require.Equal(t, pgcode.NotNullViolation, pgerror.GetPGCode(err))
}
