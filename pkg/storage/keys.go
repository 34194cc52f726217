// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/hkey"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/groupflow/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/groupflow/pkg/sql/types"
	"github.com/cockroachdb/groupflow/pkg/util/encoding"
	"github.com/cockroachdb/redact"
)

// Span is the key range [Key, EndKey).
type Span struct {
	Key    []byte
	EndKey []byte
}

// ContainsKey returns whether the span contains the key.
func (s Span) ContainsKey(k []byte) bool {
	return bytes.Compare(k, s.Key) >= 0 && (len(s.EndKey) == 0 || bytes.Compare(k, s.EndKey) < 0)
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return redact.Sprintf("[%x, %x)", s.Key, s.EndKey).StripMarkers()
}

// GroupPrefix returns the prefix shared by all keys of the group.
func GroupPrefix(g *catalog.Group) []byte {
	return encoding.EncodeUvarintAscending(nil, uint64(g.ID))
}

// GroupSpan returns the span of all rows of the group.
func GroupSpan(g *catalog.Group) Span {
	prefix := GroupPrefix(g)
	return Span{Key: prefix, EndKey: encoding.PrefixEnd(prefix)}
}

// BranchSpan returns the span of the row with the given hkey and all of its
// descendants.
func BranchSpan(g *catalog.Group, k hkey.HKey) (Span, error) {
	key, err := k.Encode(GroupPrefix(g))
	if err != nil {
		return Span{}, err
	}
	return Span{Key: key, EndKey: encoding.PrefixEnd(key)}, nil
}

// EncodeRowKey returns the storage key of the row.
func EncodeRowKey(g *catalog.Group, r row.Row) ([]byte, error) {
	return r.HKey().Encode(GroupPrefix(g))
}

// EncodeRowValue encodes the fields of the row, each according to its type.
// Bools are stored as varints. Decimals are stored in their textual form,
// which is exact.
func EncodeRowValue(r row.Row) ([]byte, error) {
	var b []byte
	rt := r.RowType()
	for i, n := 0, r.NumFields(); i < n; i++ {
		d := r.Datum(i)
		if d == tree.DNull {
			b = encoding.EncodeNullAscending(b)
			continue
		}
		switch t := d.(type) {
		case *tree.DInt:
			b = encoding.EncodeVarintAscending(b, int64(*t))
		case *tree.DString:
			b = encoding.EncodeStringAscending(b, string(*t))
		case *tree.DBool:
			v := int64(0)
			if *t {
				v = 1
			}
			b = encoding.EncodeVarintAscending(b, v)
		case *tree.DDecimal:
			b = encoding.EncodeStringAscending(b, t.Decimal.String())
		default:
			return nil, errors.AssertionFailedf("cannot encode field %s: %s of type %s",
				redact.SafeString(rt.FieldName(i)), d, d.ResolvedType())
		}
	}
	return b, nil
}

// rowDecoder turns stored key/value pairs back into rows.
type rowDecoder struct {
	schema *rowtype.Schema
	group  *catalog.Group
	prefix []byte
}

func makeRowDecoder(schema *rowtype.Schema, g *catalog.Group) rowDecoder {
	return rowDecoder{schema: schema, group: g, prefix: GroupPrefix(g)}
}

func (rd *rowDecoder) numColumns(ordinal int) (int, bool) {
	t, ok := rd.group.TableByOrdinal(ordinal)
	if !ok {
		return 0, false
	}
	segs := t.HKeySegments()
	return segs[len(segs)-1].NumColumns, true
}

func corrupted(err error, key []byte) error {
	return pgerror.Wrapf(err, pgcode.DataCorrupted, "decoding row at key %x", key)
}

func (rd *rowDecoder) decode(key, value []byte) (*row.TableRow, error) {
	if !bytes.HasPrefix(key, rd.prefix) {
		return nil, corrupted(errors.Newf("key outside of group %d", rd.group.ID), key)
	}
	k, err := hkey.Decode(key[len(rd.prefix):], rd.numColumns)
	if err != nil {
		return nil, corrupted(err, key)
	}
	if k.IsEmpty() {
		return nil, corrupted(errors.New("empty hkey"), key)
	}
	table, _ := rd.group.TableByOrdinal(k.Segment(k.NumSegments() - 1).Ordinal)
	rt := rd.schema.TableRowType(table)
	if rt == nil {
		return nil, errors.AssertionFailedf("table %s is not part of the schema", table)
	}

	datums := make(tree.Datums, rt.NumFields())
	b := value
	for i := range datums {
		if rest, ok := encoding.DecodeIfNull(b); ok {
			b = rest
			datums[i] = tree.DNull
			continue
		}
		switch rt.FieldType(i).Family() {
		case types.IntFamily:
			var v int64
			b, v, err = encoding.DecodeVarintAscending(b)
			datums[i] = tree.NewDInt(tree.DInt(v))
		case types.StringFamily:
			var v string
			b, v, err = encoding.DecodeStringAscending(b)
			datums[i] = tree.NewDString(v)
		case types.BoolFamily:
			var v int64
			b, v, err = encoding.DecodeVarintAscending(b)
			datums[i] = tree.MakeDBool(v != 0)
		case types.DecimalFamily:
			var v string
			if b, v, err = encoding.DecodeStringAscending(b); err == nil {
				datums[i], err = tree.ParseDDecimal(v)
			}
		default:
			err = errors.AssertionFailedf("unsupported type %s", rt.FieldType(i))
		}
		if err != nil {
			return nil, corrupted(errors.Wrapf(err, "field %s", redact.SafeString(rt.FieldName(i))), key)
		}
	}
	if len(b) != 0 {
		return nil, corrupted(errors.Newf("%d trailing bytes in value", len(b)), key)
	}
	r, err := row.NewTableRow(rt, datums...)
	if err != nil {
		return nil, corrupted(err, key)
	}
	if !r.HKey().Equal(k) {
		return nil, corrupted(errors.Newf("key fields %s do not match key %s", r.HKey(), k), key)
	}
	return r, nil
}
