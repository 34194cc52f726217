// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hkey

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
)

// Builder is a mutable hkey. Its memory is reused across Reset and CopyFrom.
// Keys built with it escape only through HKey, which copies.
type Builder struct {
	ordinals []int
	// starts[i] is the index into values of the first value of segment i.
	starts []int
	values tree.Datums
}

// Reset empties the builder.
func (b *Builder) Reset() {
	b.ordinals = b.ordinals[:0]
	b.starts = b.starts[:0]
	for i := range b.values {
		b.values[i] = nil
	}
	b.values = b.values[:0]
}

// CopyFrom replaces the builder's contents with k.
func (b *Builder) CopyFrom(k HKey) {
	b.Reset()
	for _, s := range k.segs {
		b.ExtendWithOrdinal(s.Ordinal)
		b.values = append(b.values, s.Values...)
	}
}

// ExtendWithOrdinal starts a new segment.
func (b *Builder) ExtendWithOrdinal(ordinal int) {
	b.ordinals = append(b.ordinals, ordinal)
	b.starts = append(b.starts, len(b.values))
}

// ExtendWithValue appends a value to the last segment.
func (b *Builder) ExtendWithValue(d tree.Datum) {
	if len(b.ordinals) == 0 {
		panic(errors.AssertionFailedf("hkey value added before any ordinal"))
	}
	b.values = append(b.values, d)
}

// ExtendWithNull appends a NULL value to the last segment.
func (b *Builder) ExtendWithNull() {
	b.ExtendWithValue(tree.DNull)
}

// NumSegments returns the number of segments built so far.
func (b *Builder) NumSegments() int { return len(b.ordinals) }

func (b *Builder) segment(i int) Segment {
	end := len(b.values)
	if i+1 < len(b.starts) {
		end = b.starts[i+1]
	}
	return Segment{Ordinal: b.ordinals[i], Values: b.values[b.starts[i]:end]}
}

// Compare compares the key being built with k, like HKey.Compare.
func (b *Builder) Compare(k HKey) int {
	n := b.NumSegments()
	if len(k.segs) < n {
		n = len(k.segs)
	}
	for i := 0; i < n; i++ {
		if c := b.segment(i).Compare(k.segs[i]); c != 0 {
			return c
		}
	}
	switch {
	case b.NumSegments() < len(k.segs):
		return -1
	case b.NumSegments() > len(k.segs):
		return 1
	}
	return 0
}

// HKey returns an independent copy of the key being built. Later changes to
// the builder do not affect it.
func (b *Builder) HKey() HKey {
	segs := make([]Segment, b.NumSegments())
	for i := range segs {
		segs[i] = b.segment(i)
	}
	return MakeHKey(segs...)
}
