// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/util/syncutil"
	"github.com/google/btree"
)

const memBTreeDegree = 16

type memEntry struct {
	key   []byte
	value []byte
}

// Less implements btree.Item.
func (e *memEntry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*memEntry).key) < 0
}

// MemEngine is an Engine keeping rows in an in-memory btree.
type MemEngine struct {
	schema *rowtype.Schema
	mu     struct {
		syncutil.RWMutex
		tree   *btree.BTree
		closed bool
	}
}

var _ Engine = (*MemEngine)(nil)

// NewMemEngine returns an empty in-memory engine for the groups of the schema.
func NewMemEngine(schema *rowtype.Schema) *MemEngine {
	e := &MemEngine{schema: schema}
	e.mu.tree = btree.New(memBTreeDegree)
	return e
}

var errClosed = errors.New("engine is closed")

// PutRow implements Writer.
func (e *MemEngine) PutRow(_ context.Context, r *row.TableRow) error {
	g := r.RowType().Table().Group()
	key, err := EncodeRowKey(g, r)
	if err != nil {
		return err
	}
	value, err := EncodeRowValue(r)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errClosed
	}
	e.mu.tree.ReplaceOrInsert(&memEntry{key: key, value: value})
	return nil
}

// Len returns the number of stored rows.
func (e *MemEngine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mu.tree.Len()
}

// NewGroupIterator implements Reader.
func (e *MemEngine) NewGroupIterator(
	_ context.Context, g *catalog.Group, span Span,
) (RowIterator, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.mu.closed {
		return nil, errClosed
	}
	return &memIterator{e: e, span: span, decoder: makeRowDecoder(e.schema, g)}, nil
}

// Close implements Engine.
func (e *MemEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mu.closed = true
	e.mu.tree = btree.New(memBTreeDegree)
}

// memIterator seeks past the last returned key on every call, so writes
// made while iterating are visible if they sort after the current position.
type memIterator struct {
	e       *MemEngine
	span    Span
	decoder rowDecoder
	// last is the key of the last returned row; nil before the first call.
	last []byte
	done bool
}

func (it *memIterator) Next() (*row.TableRow, error) {
	if it.done {
		return nil, nil
	}
	var pivot []byte
	if it.last == nil {
		pivot = it.span.Key
	} else {
		// The smallest key greater than last.
		pivot = append(append([]byte(nil), it.last...), 0)
	}

	var found *memEntry
	it.e.mu.RLock()
	if it.e.mu.closed {
		it.e.mu.RUnlock()
		return nil, errClosed
	}
	it.e.mu.tree.AscendGreaterOrEqual(&memEntry{key: pivot}, func(i btree.Item) bool {
		found = i.(*memEntry)
		return false
	})
	it.e.mu.RUnlock()

	if found == nil || !it.span.ContainsKey(found.key) {
		it.done = true
		return nil, nil
	}
	it.last = found.key
	return it.decoder.decode(found.key, found.value)
}

func (it *memIterator) Close() {
	it.done = true
}
