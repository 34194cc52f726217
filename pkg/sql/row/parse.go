// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package row

import (
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/redact"
)

// ParseTableRow builds a row from the textual form of its fields. Trailing
// fields that are omitted are NULL.
func ParseTableRow(rt *rowtype.TableRowType, fields ...string) (*TableRow, error) {
	if len(fields) > rt.NumFields() {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue,
			"%s rows have %d fields, got %d", rt, redact.Safe(rt.NumFields()), redact.Safe(len(fields)))
	}
	datums := make(tree.Datums, rt.NumFields())
	for i := range datums {
		if i >= len(fields) {
			datums[i] = tree.DNull
			continue
		}
		d, err := tree.ParseDatum(rt.FieldType(i), fields[i])
		if err != nil {
			return nil, pgerror.Wrapf(err, pgcode.InvalidParameterValue, "parsing %s", redact.SafeString(rt.FieldName(i)))
		}
		datums[i] = d
	}
	return NewTableRow(rt, datums...)
}
