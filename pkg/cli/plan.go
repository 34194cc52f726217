// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/execinfra"
	"github.com/cockroachdb/groupflow/pkg/sql/rowexec"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/storage"
	"github.com/cockroachdb/groupflow/pkg/util/log"
)

// session is a group with its schema, loaded from a fixture.
type session struct {
	fixture *fixture
	group   *catalog.Group
	schema  *rowtype.Schema
}

func newSession(path string) (*session, error) {
	f, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	g, err := f.newGroup()
	if err != nil {
		return nil, err
	}
	return &session{fixture: f, group: g, schema: rowtype.NewSchema(g)}, nil
}

// openStore opens the store selected on the command line and writes the
// fixture's rows to it.
func (s *session) openStore(ctx context.Context) (storage.Engine, int, error) {
	rows, err := s.fixture.newRows(s.schema, s.group)
	if err != nil {
		return nil, 0, err
	}
	var eng storage.Engine
	switch cliCtx.store {
	case storeMemory:
		eng = storage.NewMemEngine(s.schema)
	case storePebble:
		if cliCtx.storeDir == "" {
			return nil, 0, errors.Newf("--%s is required with --store=%s", "store-dir", storePebble)
		}
		if eng, err = storage.NewPebbleEngine(ctx, s.schema, cliCtx.storeDir, nil); err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, errors.Newf("unknown store %q", cliCtx.store)
	}
	for _, r := range rows {
		if err := eng.PutRow(ctx, r); err != nil {
			eng.Close()
			return nil, 0, errors.Wrapf(err, "writing %s", r)
		}
	}
	log.VEventf(ctx, 1, "wrote %d rows to the %s store", len(rows), cliCtx.store)
	return eng, len(rows), nil
}

// steps returns the plan of the fixture, or the flatten described by the
// command-line flags if they name one.
func (s *session) steps() ([]planStep, error) {
	if cliCtx.parent == "" && cliCtx.child == "" {
		return s.fixture.Plan, nil
	}
	if cliCtx.parent == "" || cliCtx.child == "" {
		return nil, errors.New("--parent and --child must be given together")
	}
	step := &flattenStep{Parent: cliCtx.parent, Child: cliCtx.child, Join: cliCtx.join}
	if cliCtx.keepParent {
		step.Options = append(step.Options, rowexec.KeepParent.String())
	}
	if cliCtx.keepChild {
		step.Options = append(step.Options, rowexec.KeepChild.String())
	}
	if cliCtx.leftJoinShortensHKey {
		step.Options = append(step.Options, rowexec.LeftJoinShortensHKey.String())
	}
	return []planStep{{Flatten: step}}, nil
}

// buildPlan stacks the plan's steps on a scan of the group. The scan covers
// one branch if --branch is set, in which case the returned bindings hold
// the branch's hkey.
func (s *session) buildPlan() (execinfra.Operator, *execinfra.Bindings, error) {
	steps, err := s.steps()
	if err != nil {
		return nil, nil, err
	}
	var bindings execinfra.Bindings
	var op execinfra.Operator = rowexec.NewGroupScan(s.group, rowexec.NoBranch)
	if cliCtx.branch != "" {
		r, err := parseRow(s.schema, s.group, cliCtx.branch)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parsing --branch")
		}
		bindings.SetHKey(0, r.HKey())
		op = rowexec.NewGroupScan(s.group, 0)
	}
	for i, step := range steps {
		if op, err = s.buildStep(op, step); err != nil {
			return nil, nil, errors.Wrapf(err, "plan step %d", i+1)
		}
	}
	return op, &bindings, nil
}

func (s *session) buildStep(input execinfra.Operator, step planStep) (execinfra.Operator, error) {
	if f := step.Filter; f != nil {
		keep := make([]rowtype.RowType, len(f.Types))
		for i, name := range f.Types {
			var err error
			if keep[i], err = resolveRowType(s.schema, s.group, name); err != nil {
				return nil, err
			}
		}
		return rowexec.NewFilter(input, keep...), nil
	}

	f := step.Flatten
	parent, err := resolveRowType(s.schema, s.group, f.Parent)
	if err != nil {
		return nil, err
	}
	child, err := resolveRowType(s.schema, s.group, f.Child)
	if err != nil {
		return nil, err
	}
	joinType := rowexec.InnerJoin
	if f.Join != "" {
		if joinType, err = rowexec.ParseJoinType(f.Join); err != nil {
			return nil, err
		}
	}
	var opts rowexec.FlattenOptions
	for _, name := range f.Options {
		opt, err := rowexec.ParseFlattenOption(name)
		if err != nil {
			return nil, err
		}
		opts |= opt
	}
	return rowexec.NewFlatten(input, parent, child, joinType, opts)
}
