// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowcontainer

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/util/buildutil"
	"github.com/cockroachdb/groupflow/pkg/util/ring"
	"github.com/cockroachdb/redact"
)

// PendingRows is a FIFO of rows that are ready to be emitted by an operator.
// It is sized for the operator's documented bound; exceeding the bound is a
// bug in the operator, which is caught in invariants builds.
type PendingRows struct {
	rows      ring.Buffer[row.Row]
	capacity  int
	highWater int
}

// MakePendingRows returns an empty queue expected to hold at most capacity
// rows.
func MakePendingRows(capacity int) PendingRows {
	return PendingRows{rows: ring.MakeBuffer[row.Row](capacity), capacity: capacity}
}

// Add appends r.
func (p *PendingRows) Add(r row.Row) {
	if buildutil.Invariants && p.rows.Len() >= p.capacity {
		panic(errors.AssertionFailedf("pending rows exceed capacity %d: adding %s",
			redact.Safe(p.capacity), r))
	}
	p.rows.AddLast(r)
	if n := p.rows.Len(); n > p.highWater {
		p.highWater = n
	}
}

// Take removes and returns the oldest row, or nil if there is none.
func (p *PendingRows) Take() row.Row {
	if p.rows.Len() == 0 {
		return nil
	}
	r := p.rows.GetFirst()
	p.rows.RemoveFirst()
	return r
}

// Len returns the number of queued rows.
func (p *PendingRows) Len() int { return p.rows.Len() }

// Clear discards all queued rows.
func (p *PendingRows) Clear() {
	p.rows.Reset()
}

// HighWater returns the largest number of rows queued at once since the
// queue was made.
func (p *PendingRows) HighWater() int { return p.highWater }
