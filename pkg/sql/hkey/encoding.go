// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hkey

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/groupflow/pkg/util/encoding"
	"github.com/cockroachdb/redact"
)

// Encode appends the order-preserving encoding of k to b: for every segment,
// the ordinal as an uvarint followed by each value. The byte order of two
// encoded keys is the order given by Compare.
func (k HKey) Encode(b []byte) ([]byte, error) {
	for _, s := range k.segs {
		b = encoding.EncodeUvarintAscending(b, uint64(s.Ordinal))
		for _, v := range s.Values {
			switch t := v.(type) {
			case *tree.DInt:
				b = encoding.EncodeVarintAscending(b, int64(*t))
			case *tree.DString:
				b = encoding.EncodeStringAscending(b, string(*t))
			default:
				if v == tree.DNull {
					b = encoding.EncodeNullAscending(b)
					continue
				}
				return nil, errors.AssertionFailedf("unsupported hkey value %s of type %s",
					v, v.ResolvedType())
			}
		}
	}
	return b, nil
}

// Decode decodes a key encoded with Encode. numColumns reports how many
// values the segment of the given ordinal holds.
func Decode(b []byte, numColumns func(ordinal int) (int, bool)) (HKey, error) {
	var segs []Segment
	for len(b) > 0 {
		var ord uint64
		var err error
		b, ord, err = encoding.DecodeUvarintAscending(b)
		if err != nil {
			return HKey{}, errors.Wrapf(err, "decoding ordinal of segment %d", redact.Safe(len(segs)))
		}
		n, ok := numColumns(int(ord))
		if !ok {
			return HKey{}, errors.Newf("unknown hkey ordinal %d", redact.Safe(ord))
		}
		s := Segment{Ordinal: int(ord), Values: make(tree.Datums, n)}
		for i := 0; i < n; i++ {
			switch encoding.PeekType(b) {
			case encoding.Null:
				b, _ = encoding.DecodeIfNull(b)
				s.Values[i] = tree.DNull
			case encoding.Int:
				var v int64
				if b, v, err = encoding.DecodeVarintAscending(b); err != nil {
					return HKey{}, errors.Wrapf(err, "decoding value %d of ordinal %d", redact.Safe(i), redact.Safe(ord))
				}
				s.Values[i] = tree.NewDInt(tree.DInt(v))
			case encoding.Bytes:
				var v string
				if b, v, err = encoding.DecodeStringAscending(b); err != nil {
					return HKey{}, errors.Wrapf(err, "decoding value %d of ordinal %d", redact.Safe(i), redact.Safe(ord))
				}
				s.Values[i] = tree.NewDString(v)
			default:
				return HKey{}, errors.Newf("unexpected encoding at value %d of ordinal %d", redact.Safe(i), redact.Safe(ord))
			}
		}
		segs = append(segs, s)
	}
	return HKey{segs: segs}, nil
}
