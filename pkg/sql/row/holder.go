// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package row

// Holder is a slot retaining at most one row across calls.
type Holder struct {
	r Row
}

// Hold releases the held row, if any, and retains r. A nil r leaves the
// holder empty.
func (h *Holder) Hold(r Row) {
	h.Release()
	h.r = r
}

// Release drops the held row.
func (h *Holder) Release() {
	h.r = nil
}

// IsHolding returns whether a row is held.
func (h *Holder) IsHolding() bool { return h.r != nil }

// Get returns the held row, or nil.
func (h *Holder) Get() Row { return h.r }
