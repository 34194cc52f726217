// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgcode defines the PostgreSQL error codes (SQLSTATE) reported by
// the execution layer. See https://www.postgresql.org/docs/current/errcodes-appendix.html.
package pgcode

// Code is a wrapper around a string to ensure that pgcodes don't get
// interchanged with other strings.
type Code struct {
	code string
}

// MakeCode converts a string into a Code.
func MakeCode(s string) Code {
	return Code{code: s}
}

// String returns the underlying pg code string.
func (c Code) String() string {
	return c.code
}

// SafeValue implements redact.SafeValue.
func (c Code) SafeValue() {}

var (
	// Uncategorized is used for errors that flow out to a client
	// when there's no code known yet.
	Uncategorized = MakeCode("XXUUU")

	// Section: Class 0A - Feature Not Supported
	FeatureNotSupported = MakeCode("0A000")
	// Section: Class 22 - Data Exception
	InvalidParameterValue = MakeCode("22023")
	// Section: Class 23 - Integrity Constraint Violation
	NotNullViolation = MakeCode("23502")
	// Section: Class 42 - Syntax Error or Access Rule Violation
	Syntax                 = MakeCode("42601")
	DatatypeMismatch       = MakeCode("42804")
	UndefinedTable         = MakeCode("42P01")
	UndefinedColumn        = MakeCode("42703")
	InvalidTableDefinition = MakeCode("42P16")
	DuplicateObject        = MakeCode("42710")
	// Section: Class 55 - Object Not In Prerequisite State
	ObjectNotInPrerequisiteState = MakeCode("55000")
	// Section: Class 57 - Operator Intervention
	QueryCanceled = MakeCode("57014")
	// Section: Class XX - Internal Error
	Internal      = MakeCode("XX000")
	DataCorrupted = MakeCode("XX001")
)
