// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package types describes the column types that group tables may declare.
// Only the handful of families needed to key and carry rows are supported;
// conversions between them are out of scope.
package types

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Family is the broad category a column type belongs to.
type Family int

// The ordering of the families matches the order of their markers in the key
// encoding, so that values of different families compare the way their
// encodings sort.
const (
	UnknownFamily Family = iota
	StringFamily
	IntFamily
	BoolFamily
	DecimalFamily
)

var familyNames = [...]string{
	UnknownFamily: "unknown",
	StringFamily:  "string",
	IntFamily:     "int",
	BoolFamily:    "bool",
	DecimalFamily: "decimal",
}

// String implements fmt.Stringer.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return "unknown"
	}
	return familyNames[f]
}

// SafeValue implements redact.SafeValue.
func (Family) SafeValue() {}

// T is a column type.
type T struct {
	family Family
}

// The supported column types.
var (
	Unknown = &T{family: UnknownFamily}
	String  = &T{family: StringFamily}
	Int     = &T{family: IntFamily}
	Bool    = &T{family: BoolFamily}
	Decimal = &T{family: DecimalFamily}
)

// Family returns the type's family.
func (t *T) Family() Family {
	return t.family
}

// Equivalent returns true if the two types are interchangeable.
func (t *T) Equivalent(other *T) bool {
	return t.family == other.family
}

// IsKeyable returns true if columns of this type may be part of a primary
// key, and hence of an hkey.
func (t *T) IsKeyable() bool {
	return t.family == IntFamily || t.family == StringFamily
}

// String implements fmt.Stringer.
func (t *T) String() string {
	return redact.StringWithoutMarkers(t)
}

// SafeFormat implements redact.SafeFormatter.
func (t *T) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(t.family)
}

// Parse returns the type with the given name, as written in fixtures.
func Parse(name string) (*T, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer", "int8", "bigint":
		return Int, nil
	case "string", "text", "varchar":
		return String, nil
	case "bool", "boolean":
		return Bool, nil
	case "decimal", "numeric":
		return Decimal, nil
	}
	return nil, errors.Newf("unknown type %q", name)
}
