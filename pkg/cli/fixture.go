// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog/coi"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
	"gopkg.in/yaml.v3"
)

// fixture is the YAML description of a group, its rows and a plan over
// them:
//
//	group: coi
//	tables:
//	  - name: customer
//	    ordinal: 1
//	    columns: [{name: cid, type: int}, {name: name, type: string}]
//	    primary_key: [cid]
//	  - name: order
//	    ordinal: 2
//	    parent: customer
//	    ...
//	rows:
//	  - customer 1 alice
//	  - order 1 10 5.00
//	plan:
//	  - flatten: {parent: customer, child: order, join: left, options: [keep-parent]}
//	  - filter: {types: [customer+order]}
//
// Without tables, the group is the customer/order/item sample group.
type fixture struct {
	Group  string         `yaml:"group"`
	ID     uint32         `yaml:"id"`
	Tables []tableFixture `yaml:"tables"`
	Rows   []string       `yaml:"rows"`
	Plan   []planStep     `yaml:"plan"`
}

type tableFixture struct {
	Name       string          `yaml:"name"`
	Ordinal    int             `yaml:"ordinal"`
	Parent     string          `yaml:"parent"`
	Columns    []columnFixture `yaml:"columns"`
	PrimaryKey []string        `yaml:"primary_key"`
}

type columnFixture struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// planStep is one operator of a plan, applied to the output of the
// previous step. Exactly one field is set.
type planStep struct {
	Flatten *flattenStep `yaml:"flatten"`
	Filter  *filterStep  `yaml:"filter"`
}

type flattenStep struct {
	Parent  string   `yaml:"parent"`
	Child   string   `yaml:"child"`
	Join    string   `yaml:"join"`
	Options []string `yaml:"options"`
}

type filterStep struct {
	Types []string `yaml:"types"`
}

func readFixture(path string) (*fixture, error) {
	var f fixture
	if path == "" {
		return &f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading fixture")
	}
	if err := parseFixture(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing fixture %s", path)
	}
	return &f, nil
}

func parseFixture(data []byte, f *fixture) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for i, step := range f.Plan {
		if (step.Flatten == nil) == (step.Filter == nil) {
			return errors.Newf("plan step %d must have exactly one of flatten and filter", i+1)
		}
	}
	return nil
}

// newGroup builds the group the fixture describes.
func (f *fixture) newGroup() (*catalog.Group, error) {
	if len(f.Tables) == 0 {
		if f.Group != "" && f.Group != "coi" {
			return nil, errors.Newf("group %s has no tables", f.Group)
		}
		return coi.NewGroup(), nil
	}
	defs := make([]catalog.TableDef, len(f.Tables))
	for i, t := range f.Tables {
		defs[i] = catalog.TableDef{
			Name:       t.Name,
			Ordinal:    t.Ordinal,
			Parent:     t.Parent,
			PrimaryKey: t.PrimaryKey,
		}
		for _, c := range t.Columns {
			typ, err := types.Parse(c.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "table %s column %s", t.Name, c.Name)
			}
			defs[i].Columns = append(defs[i].Columns, catalog.Column{Name: c.Name, Type: typ})
		}
	}
	id := catalog.ID(f.ID)
	if id == 0 {
		id = 1
	}
	name := f.Group
	if name == "" {
		name = defs[0].Name
	}
	return catalog.NewGroup(id, name, defs...)
}

// newRows parses the rows of the fixture, in the fixture's order.
func (f *fixture) newRows(s *rowtype.Schema, g *catalog.Group) ([]*row.TableRow, error) {
	rows := make([]*row.TableRow, 0, len(f.Rows))
	for _, line := range f.Rows {
		r, err := parseRow(s, g, line)
		if err != nil {
			return nil, errors.Wrapf(err, "row %q", line)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// parseRow parses "<table> <field>...". Omitted trailing fields are NULL.
func parseRow(s *rowtype.Schema, g *catalog.Group, line string) (*row.TableRow, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty row")
	}
	rt, err := tableRowType(s, g, fields[0])
	if err != nil {
		return nil, err
	}
	return row.ParseTableRow(rt, fields[1:]...)
}

func tableRowType(s *rowtype.Schema, g *catalog.Group, name string) (*rowtype.TableRowType, error) {
	t, ok := g.Table(name)
	if !ok {
		return nil, errors.Newf("group %s has no table %s", g.Name, name)
	}
	return s.TableRowType(t), nil
}

// resolveRowType resolves a table name to its row type, and names joined
// with "+" to the flattened type of the tables, left to right:
// customer+order+item is flatten(flatten(customer, order), item).
func resolveRowType(s *rowtype.Schema, g *catalog.Group, name string) (rowtype.RowType, error) {
	var rt rowtype.RowType
	for _, part := range strings.Split(name, "+") {
		tr, err := tableRowType(s, g, strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if rt == nil {
			rt = tr
		} else {
			rt = s.NewFlattenType(rt, tr)
		}
	}
	return rt, nil
}
