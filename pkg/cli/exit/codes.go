// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exit

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error is printed to stderr.
func UnspecifiedError() Code { return Code{1} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters or in the fixture they name.
func CommandLineFlagError() Code { return Code{4} }

// PlanExecutionError (10) indicates a plan was built but failed while
// producing rows, for example on a row its operators cannot combine.
func PlanExecutionError() Code { return Code{10} }
