// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowtype

import (
	"sort"

	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/util/syncutil"
)

// Schema is the registry of the row types of a set of groups. It is safe for
// concurrent use.
type Schema struct {
	mu struct {
		syncutil.Mutex
		nextID    ID
		byID      map[ID]RowType
		tables    map[*catalog.Table]*TableRowType
		flattened map[[2]ID]*FlattenedRowType
	}
}

// NewSchema creates a schema with a TableRowType for every table of the
// given groups.
func NewSchema(groups ...*catalog.Group) *Schema {
	s := &Schema{}
	s.mu.byID = make(map[ID]RowType)
	s.mu.tables = make(map[*catalog.Table]*TableRowType)
	s.mu.flattened = make(map[[2]ID]*FlattenedRowType)
	for _, g := range groups {
		for _, t := range g.Tables() {
			s.mu.nextID++
			rt := &TableRowType{schema: s, id: s.mu.nextID, table: t}
			s.mu.byID[rt.id] = rt
			s.mu.tables[t] = rt
		}
	}
	return s
}

// TableRowType returns the row type of the table, or nil if the table's group
// is not part of the schema.
func (s *Schema) TableRowType(t *catalog.Table) *TableRowType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.tables[t]
}

// RowType looks up a type by ID.
func (s *Schema) RowType(id ID) (RowType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.mu.byID[id]
	return rt, ok
}

// NewFlattenType returns the flattened type of the (parent, child) pair,
// registering it on first use. Both types must belong to s.
func (s *Schema) NewFlattenType(parent, child RowType) *FlattenedRowType {
	key := [2]ID{parent.ID(), child.ID()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ft, ok := s.mu.flattened[key]; ok {
		return ft
	}
	s.mu.nextID++
	ft := &FlattenedRowType{schema: s, id: s.mu.nextID, parent: parent, child: child}
	s.mu.byID[ft.id] = ft
	s.mu.flattened[key] = ft
	return ft
}

// Types returns every registered type ordered by ID.
func (s *Schema) Types() []RowType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RowType, 0, len(s.mu.byID))
	for _, rt := range s.mu.byID {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Set is a set of row types. The zero value is an empty set.
type Set struct {
	m map[ID]RowType
}

// Add adds a type to the set.
func (s *Set) Add(rt RowType) {
	if s.m == nil {
		s.m = make(map[ID]RowType)
	}
	s.m[rt.ID()] = rt
}

// Contains returns whether the type is in the set.
func (s *Set) Contains(rt RowType) bool {
	_, ok := s.m[rt.ID()]
	return ok
}

// Len returns the size of the set.
func (s *Set) Len() int { return len(s.m) }

// Sorted returns the types of the set ordered by ID.
func (s *Set) Sorted() []RowType {
	out := make([]RowType, 0, len(s.m))
	for _, rt := range s.m {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
