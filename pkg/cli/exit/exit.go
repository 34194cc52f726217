// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package exit encapsulates the process exit codes of the groupflow command.
package exit

import (
	"fmt"
	"os"
)

// Code represents an exit code.
type Code struct {
	code int
}

// Int retrieves the integer value of the code.
func (c Code) Int() int { return c.code }

// String implements fmt.Stringer.
func (c Code) String() string { return fmt.Sprintf("exit code %d", c.code) }

// WithCode terminates the process with the given code.
func WithCode(code Code) {
	os.Exit(code.code)
}
