// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cancelchecker

import (
	"context"

	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
)

// CancelChecker is a helper object for repeatedly checking whether the
// associated context has been canceled or not. Encapsulates all logic for
// waiting for checkInterval calls before actually checking for cancellation,
// for callers whose per-row cost is small enough for the check to matter.
type CancelChecker struct {
	// Reference to associated context to check.
	ctx context.Context

	// Number of times Check() has been called since last context cancellation
	// check.
	callsSinceLastCheck uint32

	// The number of Check() calls to skip the context cancellation check.
	checkInterval uint32
}

// The default check interval. Operators check on every advance, which keeps
// the single suspension point of a cursor at the top of each Next call.
const cancelCheckInterval = 1

// QueryCanceledError is an error representing query cancellation.
var QueryCanceledError = pgerror.New(pgcode.QueryCanceled, "query execution canceled")

// Check returns an error if the associated query has been canceled.
func (c *CancelChecker) Check() error {
	if c.ctx == nil {
		return nil
	}
	if c.callsSinceLastCheck%c.checkInterval == 0 {
		select {
		case <-c.ctx.Done():
			// Once the context is canceled, we no longer increment
			// callsSinceLastCheck and will fall into this path on subsequent calls
			// to Check().
			return QueryCanceledError
		default:
		}
	}

	// Increment. This may rollover when the 32-bit capacity is reached, but
	// that's all right.
	c.callsSinceLastCheck++
	return nil
}

// Reset resets this cancel checker with a fresh context.
func (c *CancelChecker) Reset(ctx context.Context) {
	*c = CancelChecker{
		ctx:           ctx,
		checkInterval: cancelCheckInterval,
	}
}
