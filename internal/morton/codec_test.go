package morton

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeKnownValues(t *testing.T) {
	require.Equal(t, Key(0), Encode(0, 0, 0))
	require.Equal(t, Key(1), Encode(1, 0, 0))
	require.Equal(t, Key(2), Encode(0, 1, 0))
	require.Equal(t, Key(4), Encode(0, 0, 1))
	require.Equal(t, Key(7), Encode(1, 1, 1))
	require.Equal(t, Key(63), Encode(3, 3, 3))
	require.Equal(t, Key(1<<30-1), Encode(MaxCoord, MaxCoord, MaxCoord))
}

func TestMortonRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint32Range(0, MaxCoord).Draw(t, "x")
		y := rapid.Uint32Range(0, MaxCoord).Draw(t, "y")
		z := rapid.Uint32Range(0, MaxCoord).Draw(t, "z")
		k := Encode(x, y, z)
		if IsEmpty(k) {
			t.Fatalf("encoded key %#x carries the empty tag", k)
		}
		gx, gy, gz := Decode(k)
		if gx != x || gy != y || gz != z {
			t.Fatalf("Decode(Encode(%d,%d,%d)) = (%d,%d,%d)", x, y, z, gx, gy, gz)
		}
	})
}

func TestSimpleRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint32Range(0, MaxCoord).Draw(t, "x")
		y := rapid.Uint32Range(0, MaxCoord).Draw(t, "y")
		z := rapid.Uint32Range(0, MaxCoord).Draw(t, "z")
		k := EncodeSimple(x, y, z)
		if IsEmpty(k) {
			t.Fatalf("simple key %#x carries the empty tag", k)
		}
		gx, gy, gz := DecodeSimple(k)
		if gx != x || gy != y || gz != z {
			t.Fatalf("DecodeSimple(EncodeSimple(%d,%d,%d)) = (%d,%d,%d)", x, y, z, gx, gy, gz)
		}
	})
}

func TestRoundTripExhaustiveSmallCube(t *testing.T) {
	for z := uint32(0); z < 16; z++ {
		for y := uint32(0); y < 16; y++ {
			for x := uint32(0); x < 16; x++ {
				gx, gy, gz := Decode(Encode(x, y, z))
				require.Equal(t, [3]uint32{x, y, z}, [3]uint32{gx, gy, gz})
				gx, gy, gz = DecodeSimple(EncodeSimple(x, y, z))
				require.Equal(t, [3]uint32{x, y, z}, [3]uint32{gx, gy, gz})
			}
		}
	}
}

func TestEmptyTag(t *testing.T) {
	k := Encode(5, 6, 7)
	require.False(t, IsEmpty(k))
	require.True(t, IsEmpty(TagEmpty(k)))
	require.True(t, IsEmpty(Empty))
	require.True(t, IsEmpty(TagEmpty(0)))
}

func TestMonotonePerAxis(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint32Range(0, MaxCoord-1).Draw(t, "x")
		y := rapid.Uint32Range(0, MaxCoord).Draw(t, "y")
		z := rapid.Uint32Range(0, MaxCoord).Draw(t, "z")
		if Encode(x+1, y, z) <= Encode(x, y, z) {
			t.Fatalf("x step not monotone at (%d,%d,%d)", x, y, z)
		}
		if uint64(Encode(x, y, z)) >= Span(MaxCoord, MaxCoord, MaxCoord) {
			t.Fatalf("key outside span")
		}
	})
}

func TestSpan(t *testing.T) {
	require.Equal(t, uint64(64), Span(3, 3, 3))
	require.Equal(t, uint64(1), Span(0, 0, 0))
	// non-cubic extent still covers every cell
	var maxKey Key
	for z := uint32(0); z < 2; z++ {
		for y := uint32(0); y < 5; y++ {
			for x := uint32(0); x < 3; x++ {
				if k := Encode(x, y, z); k > maxKey {
					maxKey = k
				}
			}
		}
	}
	require.Equal(t, uint64(maxKey)+1, Span(2, 4, 1))
}

func TestCommonPrefix(t *testing.T) {
	require.Equal(t, 32, CommonPrefix(9, 9))
	require.Equal(t, 31, CommonPrefix(0, 1))
	require.Equal(t, 2, CommonPrefix(0, 1<<29))
}
