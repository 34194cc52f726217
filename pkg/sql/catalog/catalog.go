// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package catalog holds the table and group definitions consumed by the
// execution layer. Tables of a group are stored interleaved: a child table's
// primary key is prefixed by its parent's primary key, and each table's rows
// sort right after their parent row in hkey order.
package catalog

import (
	"sort"

	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
	"github.com/cockroachdb/redact"
)

// ID identifies a group or a table within its group.
type ID uint32

// SafeValue implements redact.SafeValue.
func (ID) SafeValue() {}

// Column is a column of a table.
type Column struct {
	Name string
	Type *types.T
}

// TableDef is the input to NewGroup describing one table.
type TableDef struct {
	Name string
	// Ordinal identifies the table in hkeys. It must be positive and unique
	// within the group.
	Ordinal int
	// Parent names the parent table. It is empty for the group's root.
	Parent     string
	Columns    []Column
	PrimaryKey []string
}

// Table is an immutable table definition belonging to a Group.
type Table struct {
	ID      ID
	Name    string
	Ordinal int
	Columns []Column
	// PrimaryKey holds the column ordinals of the primary key. The first
	// len(Parent.PrimaryKey) of them correspond to the parent's key.
	PrimaryKey []int
	Parent     *Table

	group    *Group
	children []*Table
	segments []HKeySegment
}

// HKeySegment describes one level of a table's hkey: the ancestor table the
// level belongs to and the range of primary key columns stored in it.
type HKeySegment struct {
	Table *Table
	// FirstKey is the index into the primary key of the first column of the
	// segment. The segment holds PrimaryKey[FirstKey:FirstKey+NumColumns] of
	// any table at or below Table.
	FirstKey   int
	NumColumns int
}

// Group returns the group the table belongs to.
func (t *Table) Group() *Group { return t.group }

// Children returns the child tables ordered by ordinal.
func (t *Table) Children() []*Table { return t.children }

// HKeySegments returns the hkey layout of the table's rows, root first. The
// returned slice must not be modified.
func (t *Table) HKeySegments() []HKeySegment { return t.segments }

// ColumnIdx returns the ordinal of the column with the given name.
func (t *Table) ColumnIdx(name string) (int, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// IsKeyColumn returns whether the column is part of the primary key.
func (t *Table) IsKeyColumn(col int) bool {
	for _, c := range t.PrimaryKey {
		if c == col {
			return true
		}
	}
	return false
}

// IsAncestorOf returns whether t is o or one of o's ancestors.
func (t *Table) IsAncestorOf(o *Table) bool {
	for ; o != nil; o = o.Parent {
		if o == t {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (t *Table) String() string { return t.Name }

// SafeFormat implements redact.SafeFormatter. Table names are not sensitive.
func (t *Table) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(t.Name))
}

// Group is a tree of interleaved tables.
type Group struct {
	ID   ID
	Name string
	Root *Table
	// tables holds the tables in depth-first order, siblings ordered by
	// ordinal. This is the order in which their rows first appear in a scan.
	tables []*Table
}

// Tables returns the group's tables in depth-first order.
func (g *Group) Tables() []*Table { return g.tables }

// Table looks up a table by name.
func (g *Group) Table(name string) (*Table, bool) {
	for _, t := range g.tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TableByOrdinal looks up a table by its hkey ordinal.
func (g *Group) TableByOrdinal(ordinal int) (*Table, bool) {
	for _, t := range g.tables {
		if t.Ordinal == ordinal {
			return t, true
		}
	}
	return nil, false
}

// String implements fmt.Stringer.
func (g *Group) String() string { return g.Name }

// NewGroup validates the table definitions and builds a group.
func NewGroup(id ID, name string, defs ...TableDef) (*Group, error) {
	g := &Group{ID: id, Name: name}
	byName := make(map[string]*Table, len(defs))
	byOrdinal := make(map[int]string, len(defs))
	for i := range defs {
		def := &defs[i]
		if def.Name == "" {
			return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
				"table %d of group %s has no name", redact.Safe(i), redact.SafeString(name))
		}
		if _, ok := byName[def.Name]; ok {
			return nil, pgerror.Newf(pgcode.DuplicateObject,
				"table %s defined twice", redact.SafeString(def.Name))
		}
		if def.Ordinal <= 0 {
			return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
				"table %s: ordinal must be positive, got %d",
				redact.SafeString(def.Name), redact.Safe(def.Ordinal))
		}
		if other, ok := byOrdinal[def.Ordinal]; ok {
			return nil, pgerror.Newf(pgcode.DuplicateObject,
				"tables %s and %s share ordinal %d",
				redact.SafeString(other), redact.SafeString(def.Name), redact.Safe(def.Ordinal))
		}
		byOrdinal[def.Ordinal] = def.Name
		t, err := makeTable(ID(i+1), def)
		if err != nil {
			return nil, err
		}
		t.group = g
		byName[def.Name] = t
	}

	for i := range defs {
		def := &defs[i]
		t := byName[def.Name]
		if def.Parent == "" {
			if g.Root != nil {
				return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
					"group %s has two roots: %s and %s", redact.SafeString(name),
					redact.SafeString(g.Root.Name), redact.SafeString(t.Name))
			}
			g.Root = t
			continue
		}
		parent, ok := byName[def.Parent]
		if !ok {
			return nil, pgerror.Newf(pgcode.UndefinedTable,
				"parent %s of table %s is not in group %s",
				redact.SafeString(def.Parent), redact.SafeString(t.Name), redact.SafeString(name))
		}
		t.Parent = parent
		parent.children = append(parent.children, t)
	}
	if g.Root == nil {
		return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
			"group %s has no root table", redact.SafeString(name))
	}

	// Walk down from the root. Tables not reached are part of a parent cycle.
	var walk func(t *Table) error
	walk = func(t *Table) error {
		sort.Slice(t.children, func(i, j int) bool {
			return t.children[i].Ordinal < t.children[j].Ordinal
		})
		if err := t.initSegments(); err != nil {
			return err
		}
		g.tables = append(g.tables, t)
		for _, c := range t.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(g.Root); err != nil {
		return nil, err
	}
	if len(g.tables) != len(defs) {
		return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
			"group %s: tables are not all reachable from root %s",
			redact.SafeString(name), redact.SafeString(g.Root.Name))
	}
	return g, nil
}

func makeTable(id ID, def *TableDef) (*Table, error) {
	t := &Table{
		ID:      id,
		Name:    def.Name,
		Ordinal: def.Ordinal,
		Columns: append([]Column(nil), def.Columns...),
	}
	seen := make(map[string]struct{}, len(def.Columns))
	for _, c := range def.Columns {
		if _, ok := seen[c.Name]; ok {
			return nil, pgerror.Newf(pgcode.DuplicateObject,
				"table %s: column %s defined twice", redact.SafeString(t.Name), redact.SafeString(c.Name))
		}
		if c.Type == nil {
			return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
				"table %s: column %s has no type", redact.SafeString(t.Name), redact.SafeString(c.Name))
		}
		seen[c.Name] = struct{}{}
	}
	if len(def.PrimaryKey) == 0 {
		return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
			"table %s has no primary key", redact.SafeString(t.Name))
	}
	for _, name := range def.PrimaryKey {
		idx, ok := t.ColumnIdx(name)
		if !ok {
			return nil, pgerror.Newf(pgcode.UndefinedColumn,
				"table %s: primary key column %s does not exist",
				redact.SafeString(t.Name), redact.SafeString(name))
		}
		if t.IsKeyColumn(idx) {
			return nil, pgerror.Newf(pgcode.InvalidTableDefinition,
				"table %s: column %s appears twice in the primary key",
				redact.SafeString(t.Name), redact.SafeString(name))
		}
		if typ := t.Columns[idx].Type; !typ.IsKeyable() {
			return nil, pgerror.Newf(pgcode.FeatureNotSupported,
				"table %s: primary key column %s has type %s; only INT and STRING are supported",
				redact.SafeString(t.Name), redact.SafeString(name), typ)
		}
		t.PrimaryKey = append(t.PrimaryKey, idx)
	}
	return t, nil
}

// initSegments checks the interleave prefix rule against the parent, whose
// segments must already be initialized, and computes the hkey layout.
func (t *Table) initSegments() error {
	first := 0
	if p := t.Parent; p != nil {
		if len(t.PrimaryKey) <= len(p.PrimaryKey) {
			return pgerror.Newf(pgcode.InvalidTableDefinition,
				"table %s: primary key must extend the primary key of parent %s",
				redact.SafeString(t.Name), redact.SafeString(p.Name))
		}
		for i, pc := range p.PrimaryKey {
			ct := t.Columns[t.PrimaryKey[i]].Type
			if pt := p.Columns[pc].Type; !ct.Equivalent(pt) {
				return pgerror.Newf(pgcode.DatatypeMismatch,
					"table %s: primary key column %d has type %s but parent %s has %s",
					redact.SafeString(t.Name), redact.Safe(i+1), ct, redact.SafeString(p.Name), pt)
			}
		}
		t.segments = append(t.segments, p.segments...)
		first = len(p.PrimaryKey)
	}
	t.segments = append(t.segments, HKeySegment{
		Table:      t,
		FirstKey:   first,
		NumColumns: len(t.PrimaryKey) - first,
	})
	return nil
}
