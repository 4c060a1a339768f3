package volume

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/morton"
)

func TestTreeDepth(t *testing.T) {
	require.Equal(t, 1, TreeDepth(1, 2))
	require.Equal(t, 2, TreeDepth(2, 2))
	require.Equal(t, 3, TreeDepth(3, 2))
	require.Equal(t, 3, TreeDepth(4, 2))
	require.Equal(t, 2, TreeDepth(8, 8))
	require.Equal(t, 3, TreeDepth(9, 8))
	require.Equal(t, 4, TreeDepth(64, 4))
}

func TestNodeCountAndLevels(t *testing.T) {
	require.Equal(t, 7, NodeCount(3, 2))
	require.Equal(t, 21, NodeCount(3, 4))
	require.Equal(t, 73, NodeCount(3, 8))
	require.Equal(t, 1, LevelStart(0, 4))
	require.Equal(t, 2, LevelStart(1, 4))
	require.Equal(t, 6, LevelStart(2, 4))
	require.Equal(t, 10, LevelStart(2, 8))
}

func TestChildParentRoundTrip(t *testing.T) {
	for _, arity := range []int{2, 4, 8} {
		for i := 1; i < 200; i++ {
			first := FirstChild(i, arity)
			for c := first; c < first+arity; c++ {
				require.Equal(t, i, Parent(c, arity))
				require.Equal(t, c == first+arity-1, IsRightmost(c, arity), "arity %d child %d", arity, c)
			}
		}
		require.False(t, IsRightmost(1, arity))
	}
}

func TestLevelsPartitionArena(t *testing.T) {
	for _, arity := range []int{2, 4, 8} {
		depth := 4
		require.Equal(t, NodeCount(depth, arity)+1, LevelStart(depth, arity))
		for l := 0; l < depth; l++ {
			// first child of the first node on a level starts the next level
			require.Equal(t, LevelStart(l+1, arity), FirstChild(LevelStart(l, arity), arity))
		}
	}
}

func simpleKey(t *rapid.T, label string) morton.Key {
	x := rapid.Uint32Range(0, morton.MaxCoord).Draw(t, label+"x")
	y := rapid.Uint32Range(0, morton.MaxCoord).Draw(t, label+"y")
	z := rapid.Uint32Range(0, morton.MaxCoord).Draw(t, label+"z")
	return morton.EncodeSimple(x, y, z)
}

func TestUnionBoundsEmptyTag(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := simpleKey(t, "a")
		lo, hi := UnionBounds(morton.Empty, morton.Empty, morton.Empty, morton.Empty)
		if !morton.IsEmpty(lo) || !morton.IsEmpty(hi) {
			t.Fatalf("empty ∪ empty must stay empty")
		}
		lo, hi = UnionBounds(morton.Empty, morton.Empty, a, a)
		if lo != a || hi != a {
			t.Fatalf("empty ∪ %x = (%x,%x)", a, lo, hi)
		}
		lo, hi = UnionBounds(a, a, morton.Empty, morton.Empty)
		if lo != a || hi != a {
			t.Fatalf("%x ∪ empty = (%x,%x)", a, lo, hi)
		}
	})
}

func TestUnionBoundsEncloses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, b := simpleKey(t, "a"), simpleKey(t, "b")
		lo, hi := UnionBounds(a, a, b, b)
		box := boundsBox(lo, hi)
		for _, k := range []morton.Key{a, b} {
			x, y, z := morton.DecodeSimple(k)
			c := cellBox(x, y, z)
			if c.Min.X < box.Min.X || c.Min.Y < box.Min.Y || c.Min.Z < box.Min.Z ||
				c.Max.X > box.Max.X || c.Max.Y > box.Max.Y || c.Max.Z > box.Max.Z {
				t.Fatalf("cell %v outside union %v", c, box)
			}
		}
	})
}
