// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package hkey implements hierarchical keys. An hkey is a sequence of
// segments, one per level of the group's table tree from the root down to
// the row's table. Each segment holds the table's ordinal followed by the
// primary key columns that level adds. Sorting rows of a group by hkey places
// every row right before its descendants.
package hkey

import (
	"strconv"

	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/redact"
)

// Segment is one level of an HKey.
type Segment struct {
	Ordinal int
	Values  tree.Datums
}

// Compare orders segments by ordinal and then by values.
func (s Segment) Compare(o Segment) int {
	if s.Ordinal != o.Ordinal {
		if s.Ordinal < o.Ordinal {
			return -1
		}
		return 1
	}
	return s.Values.Compare(o.Values)
}

// HKey is an immutable hierarchical key. The zero value is the empty key,
// which is an ancestor of every key.
type HKey struct {
	segs []Segment
}

// MakeHKey returns an HKey with a copy of the given segments.
func MakeHKey(segs ...Segment) HKey {
	if len(segs) == 0 {
		return HKey{}
	}
	values := 0
	for i := range segs {
		values += len(segs[i].Values)
	}
	// One allocation for all values; each segment's slice is capped so that
	// appending to it cannot clobber the next one.
	alloc := make(tree.Datums, 0, values)
	out := make([]Segment, len(segs))
	for i := range segs {
		start := len(alloc)
		alloc = append(alloc, segs[i].Values...)
		out[i] = Segment{Ordinal: segs[i].Ordinal, Values: alloc[start:len(alloc):len(alloc)]}
	}
	return HKey{segs: out}
}

// NumSegments returns the number of segments.
func (k HKey) NumSegments() int { return len(k.segs) }

// Segment returns the i'th segment. Its Values must not be modified.
func (k HKey) Segment(i int) Segment { return k.segs[i] }

// IsEmpty returns whether the key has no segments.
func (k HKey) IsEmpty() bool { return len(k.segs) == 0 }

// Compare returns -1, 0 or 1 depending on whether k sorts before, together
// with, or after o. Segments are compared in order; a key that is a proper
// prefix of the other sorts first.
func (k HKey) Compare(o HKey) int {
	return compareSegments(k.segs, o.segs)
}

// Equal returns whether the keys are identical.
func (k HKey) Equal(o HKey) bool {
	return len(k.segs) == len(o.segs) && k.Compare(o) == 0
}

// IsAncestorOf returns whether o starts with all of k's segments. A key is
// its own ancestor.
func (k HKey) IsAncestorOf(o HKey) bool {
	if len(k.segs) > len(o.segs) {
		return false
	}
	for i := range k.segs {
		if k.segs[i].Compare(o.segs[i]) != 0 {
			return false
		}
	}
	return true
}

// Prefix returns the key made of the first n segments.
func (k HKey) Prefix(n int) HKey {
	if n >= len(k.segs) {
		return k
	}
	return HKey{segs: k.segs[:n:n]}
}

// String implements fmt.Stringer. Keys print as /ord/v/v/ord/v.
func (k HKey) String() string {
	return redact.StringWithoutMarkers(k)
}

// SafeFormat implements redact.SafeFormatter. Ordinals are safe, key values
// are not.
func (k HKey) SafeFormat(w redact.SafePrinter, _ rune) {
	if len(k.segs) == 0 {
		w.SafeString("/")
		return
	}
	for _, s := range k.segs {
		w.SafeRune('/')
		w.SafeString(redact.SafeString(strconv.Itoa(s.Ordinal)))
		for _, v := range s.Values {
			w.SafeRune('/')
			w.Print(v)
		}
	}
}

func compareSegments(a, b []Segment) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
