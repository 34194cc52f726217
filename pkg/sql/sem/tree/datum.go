// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
	"github.com/cockroachdb/redact"
)

// Datum represents a SQL value. Datums are immutable.
type Datum interface {
	// ResolvedType returns the type of the datum. DNull resolves to
	// types.Unknown.
	ResolvedType() *types.T
	// Compare returns -1 if the receiver is less than other, 0 if receiver is
	// equal to other and +1 if receiver is greater than other. NULL sorts
	// before every other value and is equal to itself, which is the order
	// used for hkeys rather than SQL comparison semantics.
	Compare(other Datum) int
	// String returns the datum formatted as a SQL literal.
	String() string
	redact.SafeFormatter
}

// Datums is a slice of Datum values.
type Datums []Datum

// String implements fmt.Stringer.
func (d Datums) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range d {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Compare compares the two tuples lexicographically, a shorter tuple sorting
// before any tuple it is a prefix of.
func (d Datums) Compare(other Datums) int {
	for i := 0; i < len(d) && i < len(other); i++ {
		if c := d[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	return compareInts(int64(len(d)), int64(len(other)))
}

// compareFamilies orders datums of different families.
func compareFamilies(a, b Datum) int {
	return compareInts(int64(a.ResolvedType().Family()), int64(b.ResolvedType().Family()))
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type dNull struct{}

// DNull is the NULL Datum.
var DNull Datum = dNull{}

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() *types.T { return types.Unknown }

// Compare implements the Datum interface.
func (dNull) Compare(other Datum) int {
	if other == DNull {
		return 0
	}
	return -1
}

// String implements the Datum interface.
func (dNull) String() string { return "NULL" }

// SafeFormat implements redact.SafeFormatter.
func (dNull) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("NULL") }

// DInt is the INT Datum.
type DInt int64

// NewDInt is a helper routine to create a *DInt initialized from its argument.
func NewDInt(d DInt) *DInt {
	return &d
}

// ResolvedType implements the Datum interface.
func (*DInt) ResolvedType() *types.T { return types.Int }

// Compare implements the Datum interface.
func (d *DInt) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	o, ok := other.(*DInt)
	if !ok {
		return compareFamilies(d, other)
	}
	return compareInts(int64(*d), int64(*o))
}

// String implements the Datum interface.
func (d *DInt) String() string { return strconv.FormatInt(int64(*d), 10) }

// SafeFormat implements redact.SafeFormatter.
func (d *DInt) SafeFormat(w redact.SafePrinter, _ rune) { w.Print(int64(*d)) }

// DString is the STRING Datum.
type DString string

// NewDString is a helper routine to create a *DString initialized from its
// argument.
func NewDString(d string) *DString {
	r := DString(d)
	return &r
}

// ResolvedType implements the Datum interface.
func (*DString) ResolvedType() *types.T { return types.String }

// Compare implements the Datum interface.
func (d *DString) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	o, ok := other.(*DString)
	if !ok {
		return compareFamilies(d, other)
	}
	return strings.Compare(string(*d), string(*o))
}

// String implements the Datum interface.
func (d *DString) String() string {
	return "'" + strings.ReplaceAll(string(*d), "'", "''") + "'"
}

// SafeFormat implements redact.SafeFormatter.
func (d *DString) SafeFormat(w redact.SafePrinter, _ rune) { w.Print(d.String()) }

// DBool is the BOOL Datum.
type DBool bool

var (
	constDBoolTrue  DBool = true
	constDBoolFalse DBool = false

	// DBoolTrue is a pointer to the DBool(true) value and can be used in
	// comparisons against Datum types.
	DBoolTrue = &constDBoolTrue
	// DBoolFalse is a pointer to the DBool(false) value and can be used in
	// comparisons against Datum types.
	DBoolFalse = &constDBoolFalse
)

// MakeDBool converts its argument to a *DBool, returning either DBoolTrue or
// DBoolFalse.
func MakeDBool(d DBool) *DBool {
	if d {
		return DBoolTrue
	}
	return DBoolFalse
}

// ResolvedType implements the Datum interface.
func (*DBool) ResolvedType() *types.T { return types.Bool }

// Compare implements the Datum interface.
func (d *DBool) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	o, ok := other.(*DBool)
	if !ok {
		return compareFamilies(d, other)
	}
	switch {
	case !bool(*d) && bool(*o):
		return -1
	case bool(*d) && !bool(*o):
		return 1
	}
	return 0
}

// String implements the Datum interface.
func (d *DBool) String() string { return strconv.FormatBool(bool(*d)) }

// SafeFormat implements redact.SafeFormatter.
func (d *DBool) SafeFormat(w redact.SafePrinter, _ rune) { w.Print(bool(*d)) }

// DDecimal is the DECIMAL Datum.
type DDecimal struct {
	apd.Decimal
}

// ParseDDecimal parses and returns the *DDecimal Datum value represented by
// the provided string, or an error if parsing is unsuccessful.
func ParseDDecimal(s string) (*DDecimal, error) {
	dd := &DDecimal{}
	if _, _, err := dd.SetString(strings.TrimSpace(s)); err != nil {
		return nil, errors.Wrapf(err, "could not parse %q as type decimal", s)
	}
	return dd, nil
}

// ResolvedType implements the Datum interface.
func (*DDecimal) ResolvedType() *types.T { return types.Decimal }

// Compare implements the Datum interface.
func (d *DDecimal) Compare(other Datum) int {
	if other == DNull {
		return 1
	}
	o, ok := other.(*DDecimal)
	if !ok {
		return compareFamilies(d, other)
	}
	return d.Cmp(&o.Decimal)
}

// String implements the Datum interface.
func (d *DDecimal) String() string { return d.Decimal.String() }

// SafeFormat implements redact.SafeFormatter.
func (d *DDecimal) SafeFormat(w redact.SafePrinter, _ rune) { w.Print(d.Decimal.String()) }

// ParseDatum parses s as a value of type t. The literal NULL (in any case)
// yields DNull regardless of t.
func ParseDatum(t *types.T, s string) (Datum, error) {
	if strings.EqualFold(strings.TrimSpace(s), "null") {
		return DNull, nil
	}
	switch t.Family() {
	case types.IntFamily:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q as type int", s)
		}
		return NewDInt(DInt(i)), nil
	case types.StringFamily:
		return NewDString(s), nil
	case types.BoolFamily:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q as type bool", s)
		}
		return MakeDBool(DBool(b)), nil
	case types.DecimalFamily:
		return ParseDDecimal(s)
	}
	return nil, errors.AssertionFailedf("unsupported type %s", t)
}
