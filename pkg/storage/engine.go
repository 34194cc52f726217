// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package storage stores the rows of groups in hkey order and serves them
// back through iterators. Two engines are provided: an in-memory btree and
// pebble. Both use the same key and value encoding.
package storage

import (
	"context"

	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
)

// Reader is the read side of an Engine.
type Reader interface {
	// NewGroupIterator returns an iterator over the rows of the group whose
	// keys fall within the span, in hkey order.
	NewGroupIterator(ctx context.Context, g *catalog.Group, span Span) (RowIterator, error)
}

// Writer is the write side of an Engine.
type Writer interface {
	// PutRow writes a row, replacing any row with the same hkey.
	PutRow(ctx context.Context, r *row.TableRow) error
}

// Engine is an ordered store of group rows.
type Engine interface {
	Reader
	Writer
	Close()
}

// RowIterator iterates over stored rows.
type RowIterator interface {
	// Next returns the next row, or nil once the iterator is exhausted.
	Next() (*row.TableRow, error)
	// Close releases the iterator's resources. It can be called more than
	// once.
	Close()
}
