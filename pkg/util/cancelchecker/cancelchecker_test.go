// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cancelchecker

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/stretchr/testify/require"
)

// Ensure that the query cancellation checker returns an error when the
// context is canceled.
func TestCancelChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var checker CancelChecker
	checker.Reset(ctx)
	require.NoError(t, checker.Check())
	cancel()
	err := checker.Check()
	require.True(t, errors.Is(err, QueryCanceledError))
	require.Equal(t, pgcode.QueryCanceled, pgerror.GetPGCode(err))
	// The error is sticky.
	require.Error(t, checker.Check())
}

func TestCancelCheckerChecksEveryCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var checker CancelChecker
	checker.Reset(ctx)
	for i := 0; i < 5; i++ {
		require.NoError(t, checker.Check())
	}
	cancel()
	require.ErrorIs(t, checker.Check(), QueryCanceledError)

	// Reset with a live context clears the canceled state.
	checker.Reset(context.Background())
	require.NoError(t, checker.Check())
}

func TestCancelCheckerZeroValue(t *testing.T) {
	var checker CancelChecker
	require.NoError(t, checker.Check())
}
