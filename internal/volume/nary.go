package volume

import "github.com/ibfernandes/NarvalEngine-sub001/internal/morton"

// Addressing of a complete N-ary tree stored level by level in a flat arena.
// Handles are 1-based: the root is 1 and slot 0 is never used.

func ipow(base, exp int) int {
	r := 1
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}

// TreeDepth returns the number of levels needed for leafCount leaves:
// ceil(log_arity(leafCount)) + 1.
func TreeDepth(leafCount, arity int) int {
	d, span := 1, 1
	for span < leafCount {
		span *= arity
		d++
	}
	return d
}

// NodeCount returns the size of a complete tree of the given depth.
func NodeCount(depth, arity int) int { return (ipow(arity, depth) - 1) / (arity - 1) }

// LevelStart returns the handle of the first node on level (root is level 0).
func LevelStart(level, arity int) int { return (ipow(arity, level)-1)/(arity-1) + 1 }

// FirstChild returns the handle of the leftmost child of node i.
func FirstChild(i, arity int) int { return arity*(i-1) + 2 }

// Parent returns the handle of the parent of node i (i > 1).
func Parent(i, arity int) int { return (i-2)/arity + 1 }

// IsRightmost reports whether node i is the last child of its parent.
// The root is not anyone's child.
func IsRightmost(i, arity int) bool { return i != 1 && (i-2)%arity == arity-1 }

// UnionBounds merges two simple-encoded cell bounds. An empty-tagged side is
// ignored; the result is empty only if both sides are.
func UnionBounds(aMin, aMax, bMin, bMax morton.Key) (morton.Key, morton.Key) {
	switch {
	case morton.IsEmpty(aMin):
		return bMin, bMax
	case morton.IsEmpty(bMin):
		return aMin, aMax
	}
	ax, ay, az := morton.DecodeSimple(aMin)
	bx, by, bz := morton.DecodeSimple(bMin)
	lo := morton.EncodeSimple(min(ax, bx), min(ay, by), min(az, bz))
	ax, ay, az = morton.DecodeSimple(aMax)
	bx, by, bz = morton.DecodeSimple(bMax)
	hi := morton.EncodeSimple(max(ax, bx), max(ay, by), max(az, bz))
	return lo, hi
}

// boundsBox converts a simple-encoded cell bound to the box [min, max+1].
func boundsBox(lo, hi morton.Key) Box {
	x0, y0, z0 := morton.DecodeSimple(lo)
	x1, y1, z1 := morton.DecodeSimple(hi)
	return Box{
		Min: Vec3{float64(x0), float64(y0), float64(z0)},
		Max: Vec3{float64(x1) + 1, float64(y1) + 1, float64(z1) + 1},
	}
}
