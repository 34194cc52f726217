// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
)

// JoinType is the join semantics of a flatten.
type JoinType int

const (
	// InnerJoin emits a row for every parent/child pair.
	InnerJoin JoinType = iota
	// LeftJoin additionally emits a row with a NULL child for every parent
	// without children.
	LeftJoin
	// RightJoin additionally emits a row with a NULL parent for every child
	// whose parent is not in the input.
	RightJoin
	// FullJoin is LeftJoin and RightJoin combined.
	FullJoin
)

var joinTypeNames = [...]string{
	InnerJoin: "INNER",
	LeftJoin:  "LEFT",
	RightJoin: "RIGHT",
	FullJoin:  "FULL",
}

// String implements fmt.Stringer.
func (j JoinType) String() string {
	if j < 0 || int(j) >= len(joinTypeNames) {
		return "JoinType(" + strconv.Itoa(int(j)) + ")"
	}
	return joinTypeNames[j]
}

// SafeValue implements redact.SafeValue.
func (JoinType) SafeValue() {}

// IsLeft returns whether parents without children are emitted.
func (j JoinType) IsLeft() bool { return j == LeftJoin || j == FullJoin }

// IsRight returns whether children without parents are emitted.
func (j JoinType) IsRight() bool { return j == RightJoin || j == FullJoin }

func (j JoinType) valid() bool { return j >= InnerJoin && j <= FullJoin }

// ParseJoinType parses a join type name such as "left" or "FULL".
func ParseJoinType(s string) (JoinType, error) {
	for j, name := range joinTypeNames {
		if strings.EqualFold(s, name) {
			return JoinType(j), nil
		}
	}
	return 0, pgerror.Newf(pgcode.InvalidParameterValue, "unknown join type %q", s)
}

// FlattenOptions is a set of flatten flags.
type FlattenOptions uint8

const (
	// KeepParent copies parent rows to the output.
	KeepParent FlattenOptions = 1 << iota
	// KeepChild copies child rows to the output.
	KeepChild
	// LeftJoinShortensHKey gives rows generated for parents without children
	// the parent's hkey instead of the hkey a NULL child would have. Such rows
	// may sort after following siblings of the parent's descendants, so the
	// option is meant for index maintenance, not for queries.
	LeftJoinShortensHKey
)

// Has returns whether all options of o2 are set in o.
func (o FlattenOptions) Has(o2 FlattenOptions) bool { return o&o2 == o2 }

var optionNames = []struct {
	opt  FlattenOptions
	name string
}{
	{KeepParent, "KEEP_PARENT"},
	{KeepChild, "KEEP_CHILD"},
	{LeftJoinShortensHKey, "LEFT_JOIN_SHORTENS_HKEY"},
}

// String implements fmt.Stringer.
func (o FlattenOptions) String() string {
	var names []string
	for _, on := range optionNames {
		if o.Has(on.opt) {
			names = append(names, on.name)
		}
	}
	return strings.Join(names, "|")
}

// SafeValue implements redact.SafeValue.
func (FlattenOptions) SafeValue() {}

// ParseFlattenOption parses an option name such as KEEP_PARENT or
// keep-parent.
func ParseFlattenOption(s string) (FlattenOptions, error) {
	norm := strings.ReplaceAll(s, "-", "_")
	for _, on := range optionNames {
		if strings.EqualFold(norm, on.name) {
			return on.opt, nil
		}
	}
	return 0, pgerror.Newf(pgcode.InvalidParameterValue, "unknown flatten option %q", s)
}
