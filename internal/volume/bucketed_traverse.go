package volume

import "github.com/ibfernandes/NarvalEngine-sub001/internal/morton"

// walk visits the tree in depth-first order without a stack. hit decides
// whether to enter a non-empty node; leaf processes a hit leaf and returns
// true to stop the walk.
func (t *BucketedTree) walk(hit func(n int) bool, leaf func(n int) bool) {
	n, level := 1, 0
	last := t.depth - 1
	for {
		if !morton.IsEmpty(t.lo[n]) && hit(n) {
			if level < last {
				n, level = FirstChild(n, t.arity), level+1
				continue
			}
			if leaf(n) {
				return
			}
		}
		// advance: climb while we are the last sibling
		for IsRightmost(n, t.arity) {
			n, level = Parent(n, t.arity), level-1
		}
		if n == 1 {
			return
		}
		n++
	}
}

func (t *BucketedTree) Traverse(r Ray, budget float64) Hit {
	return traverseWindow(t, r, 0, budget)
}

func (t *BucketedTree) TraverseFrom(r Ray, from, budget float64) Hit {
	return traverseWindow(t, r, from, budget)
}

// walkCells tests the unit box of every occupied cell in each bucket whose
// node bounds the ray crosses and keep accepts.
func (t *BucketedTree) walkCells(r Ray, rr rayRecips, keep func(t0, t1 float64) bool, cell func(t0, t1 float64, d float32)) {
	g := t.grid
	nodeHit := func(n int) bool {
		b := boundsBox(t.lo[n], t.hi[n])
		t0, t1, ok := rayBox(r.Origin, b.Min, b.Max, rr)
		return ok && keep(t0, t1)
	}
	leafHit := func(n int) bool {
		b := n - t.leafStart
		if b >= t.bucketCount {
			return false
		}
		for _, k := range t.keys[t.offsets[b]:t.offsets[b+1]] {
			x, y, z := morton.Decode(k)
			c := cellBox(x, y, z)
			if t0, t1, ok := rayBox(r.Origin, c.Min, c.Max, rr); ok {
				cell(t0, t1, g.At(int(x), int(y), int(z)))
			}
		}
		return false
	}
	t.walk(nodeHit, leafHit)
}
