// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cli implements the groupflow command: it loads a group of rows
// into a store and runs flatten plans over them.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/cli/clierror"
	"github.com/cockroachdb/groupflow/pkg/cli/exit"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/rowexec"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/cockroachdb/groupflow/pkg/util/metric"
	"github.com/cockroachdb/logtags"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load --fixture <file> --store pebble --store-dir <dir>",
		Short: "write the rows of a fixture to a store",
		Long: `
Writes the rows of a fixture to a store. Rows replace stored rows with the same
hkey.
`,
		Args: cobra.NoArgs,
		RunE: runLoad,
	}
}

func newFlattenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flatten [--fixture <file>] [--parent <type> --child <type> ...]",
		Short: "run a flatten plan over a group",
		Long: `
Writes the rows of the fixture, if any, to the store and runs a plan over a
scan of the group. The plan is that of the fixture, or a single flatten when
--parent and --child are given.
`,
		Args: cobra.NoArgs,
		RunE: runFlatten,
	}
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [--fixture <file>] [--parent <type> --child <type> ...]",
		Short: "print a plan and the row types it derives",
		Args:  cobra.NoArgs,
		RunE:  runExplain,
	}
}

func newRootCmd() *cobra.Command {
	initCLIDefaults()
	root := &cobra.Command{
		Use:           "groupflow [command] (flags)",
		Short:         "flatten hkey-ordered groups of rows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	AddPersistentPreRunE(root, func(cmd *cobra.Command, _ []string) error {
		log.SetVerbosity(int32(cliCtx.verbosity))
		log.SetRedactable(cliCtx.redactableLogs)
		return nil
	})
	load, flatten, explain := newLoadCmd(), newFlattenCmd(), newExplainCmd()
	registerFlags(root, load, flatten, explain)
	root.AddCommand(load, flatten, explain)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierror.NewError(err, exit.CommandLineFlagError())
	})
	return root
}

// Run runs the command line given by args, writing to out.
func Run(args []string, out io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.Execute()
}

// Main is the entry point of the groupflow binary.
func Main() {
	if err := Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			fmt.Fprintf(os.Stderr, "HINT: %s\n", strings.Join(hints, "\n"))
		}
		exit.WithCode(clierror.GetExitCode(err))
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logtags.AddTag(ctx, "cmd", cmd.Name())
}

func flagError(err error) error {
	return clierror.NewError(err, exit.CommandLineFlagError())
}

func runLoad(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	s, err := newSession(cliCtx.fixturePath)
	if err != nil {
		return flagError(err)
	}
	eng, n, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %s row%s into group %s\n",
		humanize.Comma(int64(n)), pluralize(int64(n)), s.group.Name)
	return nil
}

func runFlatten(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	s, err := newSession(cliCtx.fixturePath)
	if err != nil {
		return flagError(err)
	}
	op, bindings, err := s.buildPlan()
	if err != nil {
		return flagError(err)
	}
	rw, err := newRowWriter(cmd.OutOrStdout(), cliCtx.format)
	if err != nil {
		return flagError(err)
	}
	eng, _, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	registry := metric.NewRegistry()
	metrics := execinfra.MakeMetrics()
	if err := registry.AddMetricStruct(metrics); err != nil {
		return err
	}
	flowCtx := &execinfra.FlowCtx{Store: eng, Metrics: &metrics}
	log.VEventf(ctx, 1, "running plan:\n%s", op.DescribePlan())
	if err := rowexec.Run(ctx, flowCtx, op, bindings, rw.add); err != nil {
		rw.flush()
		return clierror.NewError(err, exit.PlanExecutionError())
	}
	rw.flush()
	if cliCtx.metrics {
		return registry.WriteText(cmd.OutOrStdout())
	}
	return nil
}

func runExplain(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cliCtx.fixturePath)
	if err != nil {
		return flagError(err)
	}
	op, _, err := s.buildPlan()
	if err != nil {
		return flagError(err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, op.DescribePlan())
	var types rowtype.Set
	op.FindDerivedTypes(&types)
	for _, rt := range types.Sorted() {
		fmt.Fprintf(w, "derived: %s (%s)\n", rt, describeFields(rt))
	}
	return nil
}

func describeFields(rt rowtype.RowType) string {
	names := make([]string, rt.NumFields())
	for i := range names {
		names[i] = rt.FieldName(i)
	}
	return strings.Join(names, ", ")
}
