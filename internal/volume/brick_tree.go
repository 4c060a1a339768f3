package volume

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/morton"
)

const noNode = -1

// brickNode is one slot of the radix tree arena. For a leaf, brick indexes
// the brick tables; for an internal node, left and right are child handles.
type brickNode struct {
	box         Box
	parent      int32
	left, right int32
	brick       int32
	leaf        bool
}

// BrickTree is a binary radix tree over the non-empty bricks of a grid,
// built with the Karras construction: n bricks give exactly 2n-1 nodes,
// internal nodes in [0, n-1) and leaves in [n-1, 2n-1). The root is node 0
// (or the single leaf when n == 1).
type BrickTree struct {
	grid      *Grid
	brickSize int

	keys  []morton.Key // sorted brick keys
	nodes []brickNode

	// occupied cells per brick: cells[cellOffsets[b]:cellOffsets[b+1]]
	cells       []int32
	cellOffsets []int32
}

// NewBrickTree partitions g into bricks of brickSize^3 cells and builds the
// hierarchy over the non-empty ones. workers <= 0 uses GOMAXPROCS.
func NewBrickTree(g *Grid, brickSize, workers int) (*BrickTree, error) {
	if err := validateSize(g.Size[0], g.Size[1], g.Size[2]); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	if brickSize <= 0 || brickSize > MaxDim {
		return nil, errors.Wrapf(ErrInvalidConfig, "brick size %d outside [1,%d]", brickSize, MaxDim)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	t := &BrickTree{grid: g, brickSize: brickSize}
	t.collectBricks()

	n := len(t.keys)
	switch n {
	case 0:
	case 1:
		t.nodes = []brickNode{t.leafNode(0)}
	default:
		t.nodes = make([]brickNode, 2*n-1)
		for i := 0; i < n-1; i++ {
			t.nodes[i] = brickNode{parent: noNode, left: noNode, right: noNode, brick: noNode}
		}
		for i := 0; i < n; i++ {
			t.nodes[n-1+i] = t.leafNode(i)
		}
		if err := t.buildInternal(workers); err != nil {
			return nil, err
		}
		if err := t.propagateBounds(workers); err != nil {
			return nil, err
		}
	}
	logger.WithFields(logrus.Fields{
		"brickSize": brickSize,
		"bricks":    n,
		"nodes":     len(t.nodes),
		"workers":   workers,
	}).Debug("brick tree layout")
	return t, nil
}

// collectBricks finds the non-empty bricks, sorts them by Morton key of the
// brick coordinate and records their occupied cells in that order.
func (t *BrickTree) collectBricks() {
	g, bs := t.grid, t.brickSize
	nb := [3]int{ceilDiv(g.Size[0], bs), ceilDiv(g.Size[1], bs), ceilDiv(g.Size[2], bs)}

	keys := make([]morton.Key, 0, 64)
	for bz := 0; bz < nb[2]; bz++ {
		for by := 0; by < nb[1]; by++ {
			for bx := 0; bx < nb[0]; bx++ {
				if t.brickOccupied(bx, by, bz) {
					keys = append(keys, morton.Encode(uint32(bx), uint32(by), uint32(bz)))
				}
			}
		}
	}
	morton.Sort(keys)
	t.keys = keys

	t.cellOffsets = make([]int32, len(keys)+1)
	for i, k := range keys {
		bx, by, bz := morton.Decode(k)
		t.forBrickCells(int(bx), int(by), int(bz), func(idx int) bool {
			t.cells = append(t.cells, int32(idx))
			return true
		})
		t.cellOffsets[i+1] = int32(len(t.cells))
	}
}

func (t *BrickTree) brickOccupied(bx, by, bz int) bool {
	found := false
	t.forBrickCells(bx, by, bz, func(int) bool {
		found = true
		return false
	})
	return found
}

// forBrickCells calls fn with the linear index of every occupied cell of the
// brick until fn returns false.
func (t *BrickTree) forBrickCells(bx, by, bz int, fn func(idx int) bool) {
	g, bs := t.grid, t.brickSize
	x0, y0, z0 := bx*bs, by*bs, bz*bs
	x1, y1, z1 := min(x0+bs, g.Size[0]), min(y0+bs, g.Size[1]), min(z0+bs, g.Size[2])
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			row := g.Index(0, y, z)
			for x := x0; x < x1; x++ {
				if g.Data[row+x] != 0 && !fn(row+x) {
					return
				}
			}
		}
	}
}

// leafNode builds leaf i with the tight bound of its occupied cells.
func (t *BrickTree) leafNode(i int) brickNode {
	var b Box
	for j, idx := range t.cells[t.cellOffsets[i]:t.cellOffsets[i+1]] {
		x, y, z := t.grid.Coord(int(idx))
		c := cellBox(uint32(x), uint32(y), uint32(z))
		if j == 0 {
			b = c
			continue
		}
		b = b.Union(c)
	}
	return brickNode{box: b, parent: noNode, left: noNode, right: noNode, brick: int32(i), leaf: true}
}

// delta is the common prefix length of keys i and j, or -1 when j is out of
// range. Duplicate keys fall back to comparing the indices.
func (t *BrickTree) delta(i, j int) int {
	if j < 0 || j >= len(t.keys) {
		return -1
	}
	if t.keys[i] == t.keys[j] {
		return 32 + morton.CommonPrefix(morton.Key(i), morton.Key(j))
	}
	return morton.CommonPrefix(t.keys[i], t.keys[j])
}

// buildInternal determines the children of every internal node. Each slot
// is independent, so chunks of slots run on separate goroutines.
func (t *BrickTree) buildInternal(workers int) error {
	n := len(t.keys)
	var eg errgroup.Group
	eg.SetLimit(workers)
	for lo := 0; lo < n-1; lo += brickChunk {
		lo, hi := lo, min(lo+brickChunk, n-1)
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				t.splitNode(i)
			}
			return nil
		})
	}
	return errors.Wrap(eg.Wait(), "build internal nodes")
}

func (t *BrickTree) splitNode(i int) {
	n := len(t.keys)

	// direction of the range
	d := 1
	if t.delta(i, i+1) < t.delta(i, i-1) {
		d = -1
	}

	// upper bound for the range length, then its exact end
	dMin := t.delta(i, i-d)
	lMax := 2
	for t.delta(i, i+lMax*d) > dMin {
		lMax *= 2
	}
	l := 0
	for step := lMax / 2; step >= 1; step /= 2 {
		if t.delta(i, i+(l+step)*d) > dMin {
			l += step
		}
	}
	j := i + l*d

	// split position
	dNode := t.delta(i, j)
	s, step := 0, l
	for {
		step = (step + 1) / 2
		if t.delta(i, i+(s+step)*d) > dNode {
			s += step
		}
		if step <= 1 {
			break
		}
	}
	gamma := i + s*d + min(d, 0)

	left, right := int32(gamma), int32(gamma+1)
	if min(i, j) == gamma {
		left += int32(n - 1)
	}
	if max(i, j) == gamma+1 {
		right += int32(n - 1)
	}
	t.nodes[i].left, t.nodes[i].right = left, right
	// every node has exactly one parent, so these writes never collide
	t.nodes[left].parent = int32(i)
	t.nodes[right].parent = int32(i)
}

// propagateBounds walks from every leaf towards the root. The first
// child to arrive at a node stops; the second unions both child bounds and
// continues, so each internal bound is written once after its subtree.
func (t *BrickTree) propagateBounds(workers int) error {
	n := len(t.keys)
	arrivals := make([]atomic.Int32, n-1)
	var eg errgroup.Group
	eg.SetLimit(workers)
	for lo := 0; lo < n; lo += brickChunk {
		lo, hi := lo, min(lo+brickChunk, n)
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				p := t.nodes[n-1+i].parent
				for p != noNode {
					if arrivals[p].Add(1) == 1 {
						break
					}
					nd := &t.nodes[p]
					nd.box = t.nodes[nd.left].box.Union(t.nodes[nd.right].box)
					p = nd.parent
				}
			}
			return nil
		})
	}
	return errors.Wrap(eg.Wait(), "propagate bounds")
}

func (t *BrickTree) Kind() Kind { return KindBrick }

func (t *BrickTree) Grid() *Grid { return t.grid }

// BrickSize returns the brick edge length in cells.
func (t *BrickTree) BrickSize() int { return t.brickSize }

// NodeCount returns the arena size.
func (t *BrickTree) NodeCount() int { return len(t.nodes) }

// LeafCount returns the number of non-empty bricks.
func (t *BrickTree) LeafCount() int { return len(t.keys) }

// BrickCells returns the linear indices of the occupied cells of brick b.
func (t *BrickTree) BrickCells(b int) []int32 {
	return t.cells[t.cellOffsets[b]:t.cellOffsets[b+1]]
}

func (t *BrickTree) root() int32 {
	if len(t.nodes) == 0 {
		return noNode
	}
	return 0
}

func (t *BrickTree) Bounds() (Box, bool) {
	if len(t.nodes) == 0 {
		return Box{}, false
	}
	return t.nodes[0].box, true
}

// depthOf measures the longest root-to-leaf path.
func (t *BrickTree) depthOf(i int32) int {
	nd := &t.nodes[i]
	if nd.leaf {
		return 1
	}
	return 1 + max(t.depthOf(nd.left), t.depthOf(nd.right))
}

func (t *BrickTree) Stats() Stats {
	st := Stats{
		Kind:     KindBrick,
		Nodes:    len(t.nodes),
		Leaves:   len(t.keys),
		Occupied: len(t.cells),
	}
	if r := t.root(); r != noNode {
		st.Depth = t.depthOf(r)
	}
	const nodeBytes = 6*8 + 4*4 + 8
	st.Bytes = int64(len(t.nodes))*nodeBytes + int64(len(t.keys))*4 +
		int64(len(t.cells))*4 + int64(len(t.cellOffsets))*4
	return st
}
