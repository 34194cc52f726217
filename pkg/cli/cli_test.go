// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/groupflow/pkg/cli/clierror"
	"github.com/cockroachdb/groupflow/pkg/cli/exit"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer log.SetVerbosity(log.SetVerbosity(0))
	var buf bytes.Buffer
	err := Run(args, &buf)
	return buf.String(), err
}

func TestFlattenFixturePlan(t *testing.T) {
	out, err := runCLI(t, "flatten", "--fixture", "testdata/coi.yaml", "--format", "tsv")
	require.NoError(t, err)
	require.Equal(t, `hkey	type	fields
/1/1	customer	1, 'alice'
/1/1/2/10	flatten(customer, order)	1, 'alice', 1, 10, 5.00
/1/1/2/10/3/100	item	1, 10, 100, 'widget'
/1/2	customer	2, 'bob'
/1/2/2/NULL	flatten(customer, order)	2, 'bob', NULL, NULL, NULL
/1/2/4/1	address	2, 1, 'oslo', true
/1/3	customer	3, 'carol'
/1/3/2/NULL	flatten(customer, order)	3, 'carol', NULL, NULL, NULL
(8 rows)
`, out)
}

func TestFlattenFlags(t *testing.T) {
	out, err := runCLI(t, "flatten", "-f", "testdata/coi.yaml", "--format=tsv",
		"--parent=customer", "--child=address", "--join=full", "--keep-child", "--branch", "customer 2")
	require.NoError(t, err)
	require.Equal(t, `hkey	type	fields
/1/2/4/1	address	2, 1, 'oslo', true
/1/2/4/1	flatten(customer, address)	2, 'bob', 2, 1, 'oslo', true
(2 rows)
`, out)
}

func TestFlattenOwnGroup(t *testing.T) {
	out, err := runCLI(t, "flatten", "--fixture", "testdata/chain.yaml", "--format", "tsv")
	require.NoError(t, err)
	require.Equal(t, `hkey	type	fields
/1/'a'/2/1/3/1	flatten(flatten(account, payment), refund)	'a', true, 'a', 1, 10.00, 'a', 1, 1
/1/'a'/2/2	flatten(flatten(account, payment), refund)	'a', true, 'a', 2, 3.50, NULL, NULL, NULL
/1/'b'	flatten(flatten(account, payment), refund)	'b', false, NULL, NULL, NULL, NULL, NULL, NULL
(3 rows)
`, out)
}

func TestFlattenTable(t *testing.T) {
	out, err := runCLI(t, "flatten", "--fixture", "testdata/coi.yaml", "--parent", "customer", "--child", "order")
	require.NoError(t, err)
	require.Contains(t, out, "hkey")
	require.Contains(t, out, "flatten(customer, order)")
	require.Contains(t, out, "1, 'alice', 1, 10, 5.00")
	// Items and addresses are neither parent nor child and pass through.
	require.Contains(t, out, "/1/1/2/10/3/100")
	require.Contains(t, out, "1, 10, 100, 'widget'")
	require.Contains(t, out, "/1/2/4/1")
	require.Contains(t, out, "2, 1, 'oslo', true")
	require.True(t, strings.HasSuffix(out, "(3 rows)\n"), out)
}

func TestFlattenMetrics(t *testing.T) {
	out, err := runCLI(t, "flatten", "--fixture", "testdata/coi.yaml", "--format", "tsv", "--metrics")
	require.NoError(t, err)
	require.Contains(t, out, "(8 rows)\n")
	require.Contains(t, out, "# TYPE sql_exec_flatten_opens counter\nsql_exec_flatten_opens 1\n")
	require.Contains(t, out, "sql_exec_group_scan_rows 6\n")
	require.Contains(t, out, "sql_exec_flatten_pending_max 2\n")
}

func TestExplain(t *testing.T) {
	out, err := runCLI(t, "explain", "--fixture", "testdata/chain.yaml")
	require.NoError(t, err)
	require.Equal(t, `group_scan(billing)
flatten(account LEFT payment, LEFT_JOIN_SHORTENS_HKEY)
flatten(flatten(account, payment) LEFT refund, LEFT_JOIN_SHORTENS_HKEY)
filter(flatten(flatten(account, payment), refund))
derived: flatten(account, payment) (account.acct, account.vip, payment.acct, payment.pid, payment.amount)
derived: flatten(flatten(account, payment), refund) (account.acct, account.vip, payment.acct, payment.pid, payment.amount, refund.acct, refund.pid, refund.rid)
`, out)

	out, err = runCLI(t, "explain", "--parent", "order", "--child", "item", "--join", "right", "--branch", "order 1 2")
	require.NoError(t, err)
	require.Equal(t, `group_scan(coi, branch $0)
flatten(order RIGHT item)
derived: flatten(order, item) (order.cid, order.oid, order.amount, item.cid, item.oid, item.iid, item.sku)
`, out)
}

func TestLoadPebble(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "load", "--fixture", "testdata/coi.yaml", "--store", "pebble", "--store-dir", dir)
	require.NoError(t, err)
	require.Equal(t, "loaded 6 rows into group coi\n", out)

	// The rows are read back from the store; no fixture is given.
	out, err = runCLI(t, "flatten", "--store", "pebble", "--store-dir", dir, "--format", "tsv",
		"--parent", "order", "--child", "item")
	require.NoError(t, err)
	require.Equal(t, `hkey	type	fields
/1/1	customer	1, 'alice'
/1/1/2/10/3/100	flatten(order, item)	1, 10, 5.00, 1, 10, 100, 'widget'
/1/2	customer	2, 'bob'
/1/2/4/1	address	2, 1, 'oslo', true
/1/3	customer	3, 'carol'
(5 rows)
`, out)
}

func TestCLIErrors(t *testing.T) {
	for _, tc := range []struct {
		args     []string
		expected string
		code     exit.Code
	}{
		{
			args:     []string{"flatten", "--parent", "customer", "--child", "order", "--join", "sideways"},
			expected: `plan step 1: unknown join type "sideways"`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--parent", "customer"},
			expected: "--parent and --child must be given together",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"explain", "--parent", "customer", "--child", "item"},
			expected: "plan step 1: customer is not the parent of item",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--parent", "customer", "--child", "order", "--left-join-shortens-hkey"},
			expected: "plan step 1: LEFT_JOIN_SHORTENS_HKEY requires a left or full join, got INNER",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--parent", "customer+orders", "--child", "item"},
			expected: "plan step 1: group coi has no table orders",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--format", "csv"},
			expected: `unknown format "csv"`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--branch", "customer x"},
			expected: `parsing --branch: parsing customer.cid`,
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--store", "rocks"},
			expected: `unknown store "rocks"`,
			code:     exit.UnspecifiedError(),
		},
		{
			args:     []string{"load", "--store", "pebble"},
			expected: "--store-dir is required with --store=pebble",
			code:     exit.UnspecifiedError(),
		},
		{
			args:     []string{"flatten", "--no-such-flag"},
			expected: "unknown flag: --no-such-flag",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--fixture", "testdata/unknown_field.yaml"},
			expected: "field plans not found",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--fixture", "testdata/missing.yaml"},
			expected: "reading fixture",
			code:     exit.CommandLineFlagError(),
		},
		{
			args:     []string{"flatten", "--fixture", "testdata/incompatible.yaml"},
			expected: "parent hkey /1/1 has 1 segments, expected 2",
			code:     exit.PlanExecutionError(),
		},
	} {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			_, err := runCLI(t, tc.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
			require.Equal(t, tc.code, clierror.GetExitCode(err))
		})
	}
}

func TestParseFixture(t *testing.T) {
	var f fixture
	require.NoError(t, parseFixture(nil, &f))
	g, err := f.newGroup()
	require.NoError(t, err)
	require.Equal(t, "coi", g.Name)

	err = parseFixture([]byte("plan:\n  - flatten: {parent: customer, child: order}\n    filter: {types: [customer]}\n"), &f)
	require.EqualError(t, err, "plan step 1 must have exactly one of flatten and filter")

	f = fixture{Group: "billing"}
	_, err = f.newGroup()
	require.EqualError(t, err, "group billing has no tables")

	f = fixture{Tables: []tableFixture{{Name: "t", Ordinal: 1, Columns: []columnFixture{{Name: "k", Type: "blob"}}}}}
	_, err = f.newGroup()
	require.EqualError(t, err, `table t column k: unknown type "blob"`)
}
