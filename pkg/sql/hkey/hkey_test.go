// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hkey

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cockroachdb/groupflow/pkg/sql/sem/tree"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func i(v int64) tree.Datum  { return tree.NewDInt(tree.DInt(v)) }
func s(v string) tree.Datum { return tree.NewDString(v) }

func seg(ord int, vals ...tree.Datum) Segment {
	return Segment{Ordinal: ord, Values: vals}
}

func TestCompare(t *testing.T) {
	c1 := MakeHKey(seg(1, i(1)))
	c2 := MakeHKey(seg(1, i(2)))
	o10 := MakeHKey(seg(1, i(1)), seg(2, i(10)))
	o11 := MakeHKey(seg(1, i(1)), seg(2, i(11)))
	oNull := MakeHKey(seg(1, i(1)), seg(2, tree.DNull))
	a1 := MakeHKey(seg(1, i(1)), seg(4, i(1)))

	ordered := []HKey{{}, c1, oNull, o10, o11, a1, c2}
	for x := range ordered {
		for y := range ordered {
			expected := 0
			if x < y {
				expected = -1
			} else if x > y {
				expected = 1
			}
			require.Equal(t, expected, ordered[x].Compare(ordered[y]), "%s vs %s", ordered[x], ordered[y])
			require.Equal(t, x == y, ordered[x].Equal(ordered[y]))
		}
	}
}

func TestIsAncestorOf(t *testing.T) {
	c1 := MakeHKey(seg(1, i(1)))
	o10 := MakeHKey(seg(1, i(1)), seg(2, i(10)))
	item := MakeHKey(seg(1, i(1)), seg(2, i(10)), seg(3, i(5)))
	otherOrder := MakeHKey(seg(1, i(2)), seg(2, i(10)))
	addr := MakeHKey(seg(1, i(1)), seg(4, i(10)))

	require.True(t, HKey{}.IsAncestorOf(item))
	require.True(t, c1.IsAncestorOf(c1))
	require.True(t, c1.IsAncestorOf(o10))
	require.True(t, c1.IsAncestorOf(item))
	require.True(t, o10.IsAncestorOf(item))
	require.False(t, o10.IsAncestorOf(c1))
	require.False(t, c1.IsAncestorOf(otherOrder))
	require.False(t, o10.IsAncestorOf(addr))
	require.True(t, item.Prefix(2).Equal(o10))
	require.True(t, item.Prefix(5).Equal(item))
}

func TestString(t *testing.T) {
	k := MakeHKey(seg(1, s("bob")), seg(2, i(10), tree.DNull))
	require.Equal(t, "/1/'bob'/2/10/NULL", k.String())
	require.Equal(t, "/", HKey{}.String())
	redacted := redact.Sprint(MakeHKey(seg(1, s("bob")), seg(2, tree.DNull))).Redact()
	require.Equal(t, redact.RedactableString("/1/‹×›/2/NULL"), redacted)
}

func TestMakeHKeyCopies(t *testing.T) {
	vals := tree.Datums{i(1)}
	segs := []Segment{{Ordinal: 1, Values: vals}}
	k := MakeHKey(segs...)
	vals[0] = i(2)
	segs[0].Ordinal = 9
	require.Equal(t, "/1/1", k.String())
}

func TestBuilder(t *testing.T) {
	parent := MakeHKey(seg(1, i(7)))
	var b Builder
	b.CopyFrom(parent)
	b.ExtendWithOrdinal(2)
	b.ExtendWithNull()
	require.Equal(t, 2, b.NumSegments())

	published := b.HKey()
	require.Equal(t, "/1/7/2/NULL", published.String())
	require.Zero(t, b.Compare(published))
	require.Equal(t, -1, b.Compare(MakeHKey(seg(1, i(7)), seg(2, i(0)))))
	require.Equal(t, 1, b.Compare(parent))

	// Mutating the builder right after publishing must not affect the
	// published key.
	b.ExtendWithValue(i(99))
	b.ExtendWithOrdinal(3)
	require.Equal(t, "/1/7/2/NULL", published.String())
	b.CopyFrom(MakeHKey(seg(1, i(8))))
	require.Equal(t, "/1/7/2/NULL", published.String())
	require.Equal(t, "/1/8", b.HKey().String())

	b.Reset()
	require.Zero(t, b.NumSegments())
	require.Panics(t, func() { b.ExtendWithNull() })
}

func TestEncodeDecode(t *testing.T) {
	columns := func(ord int) (int, bool) {
		switch ord {
		case 1, 2, 3:
			return ord, true
		}
		return 0, false
	}
	rng := rand.New(rand.NewSource(42))
	randValue := func() tree.Datum {
		switch rng.Intn(4) {
		case 0:
			return tree.DNull
		case 1:
			return s(string([]byte{byte(rng.Intn(3)), byte('a' + rng.Intn(3))}))
		default:
			return i(int64(rng.Intn(200) - 100))
		}
	}
	randKey := func() HKey {
		var segs []Segment
		for n := rng.Intn(4); n > 0; n-- {
			ord := 1 + rng.Intn(3)
			sg := Segment{Ordinal: ord}
			for j := 0; j < ord; j++ {
				sg.Values = append(sg.Values, randValue())
			}
			segs = append(segs, sg)
		}
		return MakeHKey(segs...)
	}

	for iter := 0; iter < 500; iter++ {
		a, b := randKey(), randKey()
		ea, err := a.Encode(nil)
		require.NoError(t, err)
		eb, err := b.Encode(nil)
		require.NoError(t, err)

		da, err := Decode(ea, columns)
		require.NoError(t, err)
		require.True(t, a.Equal(da), "%s decoded as %s", a, da)
		require.Equal(t, a.Compare(b), bytes.Compare(ea, eb), "%s vs %s", a, b)
	}
}

func TestDecodeErrors(t *testing.T) {
	columns := func(ord int) (int, bool) { return 1, ord == 1 }
	good, err := MakeHKey(seg(1, i(3))).Encode(nil)
	require.NoError(t, err)

	_, err = Decode(good[:1], columns)
	require.Error(t, err)

	bad, err := MakeHKey(seg(2, i(3))).Encode(nil)
	require.NoError(t, err)
	_, err = Decode(bad, columns)
	require.ErrorContains(t, err, "unknown hkey ordinal 2")

	_, err = MakeHKey(seg(1, tree.DBoolTrue)).Encode(nil)
	require.Error(t, err)
}
