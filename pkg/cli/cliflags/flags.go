// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cliflags describes the command-line flags of groupflow.
package cliflags

import "strings"

// FlagInfo contains the static information for a CLI flag and helper
// to format the description.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string

	// Shorthand is the short form of the flag (optional).
	Shorthand string

	// EnvVar is the name of the environment variable through which the flag
	// can also be set (optional).
	EnvVar string

	// Description of the flag.
	Description string
}

// Usage returns the description, followed by the environment variable that
// sets the flag, if any.
func (f FlagInfo) Usage() string {
	s := strings.TrimSpace(f.Description)
	if f.EnvVar != "" {
		s += "\nEnvironment variable: " + f.EnvVar
	}
	return s
}

// Flags common to all commands.
var (
	Verbosity = FlagInfo{
		Name:        "v",
		EnvVar:      "GROUPFLOW_VERBOSITY",
		Description: `Log verbosity. Level 2 logs operator opens, level 3 every row decision.`,
	}

	RedactableLogs = FlagInfo{
		Name: "redactable-logs",
		Description: `
Enclose unsafe values, such as row contents, in redaction markers in the log
output.`,
	}
)

// Flags of the commands that read a fixture.
var (
	Fixture = FlagInfo{
		Name:      "fixture",
		Shorthand: "f",
		EnvVar:    "GROUPFLOW_FIXTURE",
		Description: `
YAML file describing the group, its rows and the plan. Without it, the
customer/order/item sample group is used and no rows are written.`,
	}

	Store = FlagInfo{
		Name:        "store",
		EnvVar:      "GROUPFLOW_STORE",
		Description: `Storage engine holding the rows: "memory" or "pebble".`,
	}

	StoreDir = FlagInfo{
		Name:        "store-dir",
		EnvVar:      "GROUPFLOW_STORE_DIR",
		Description: `Directory of the pebble store.`,
	}
)

// Flags that describe a flatten on the command line. When Parent and Child
// are given, they replace the plan of the fixture.
var (
	Parent = FlagInfo{
		Name: "parent",
		Description: `
Parent row type of the flatten: a table name, or tables joined with "+" for the
output of an earlier flatten, as in customer+order.`,
	}

	Child = FlagInfo{
		Name:        "child",
		Description: `Child row type of the flatten.`,
	}

	Join = FlagInfo{
		Name:        "join",
		Description: `Join type of the flatten: inner, left, right or full.`,
	}

	KeepParent = FlagInfo{
		Name:        "keep-parent",
		Description: `Also output the parent rows.`,
	}

	KeepChild = FlagInfo{
		Name:        "keep-child",
		Description: `Also output the child rows.`,
	}

	LeftJoinShortensHKey = FlagInfo{
		Name: "left-join-shortens-hkey",
		Description: `
Give rows of parents without children the parent's hkey. Only valid with left
and full joins.`,
	}

	Branch = FlagInfo{
		Name: "branch",
		Description: `
Scan only the rows under one row of the group, given as "<table> <key>...", as
in "customer 1".`,
	}
)

// Output flags.
var (
	Format = FlagInfo{
		Name:        "format",
		EnvVar:      "GROUPFLOW_FORMAT",
		Description: `Output format of rows: "table" or "tsv".`,
	}

	Metrics = FlagInfo{
		Name:        "metrics",
		Description: `Print the operator metrics in the prometheus text format after the rows.`,
	}
)
