package volume

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/morton"
)

// maxTreeNodes caps the arena so a tiny capacity on a large grid fails at
// construction instead of exhausting memory.
const maxTreeNodes = 1 << 31

// BucketedTree is a complete N-ary tree (arity 2, 4 or 8) over the Morton
// key space of a grid. Each leaf owns one bucket: a contiguous key range of
// fixed capacity. Node bounds are simple-encoded cell coordinates, or the
// empty tag when no occupied cell lies below the node.
type BucketedTree struct {
	grid *Grid

	arity       int
	depth       int
	capacity    int
	bucketCount int
	leafStart   int

	// 1-based node arena; slot 0 unused
	lo, hi []morton.Key

	keys    []morton.Key // sorted occupied keys
	offsets []int        // bucket b is keys[offsets[b]:offsets[b+1]]
	empty   int
}

// NewBucketedTree indexes the occupied cells of g.
func NewBucketedTree(g *Grid, capacity, arity int) (*BucketedTree, error) {
	if err := validateSize(g.Size[0], g.Size[1], g.Size[2]); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return newBucketedTree(g, g.occupiedKeys(), capacity, arity)
}

// newBucketedTree builds the tree from keys already sorted ascending.
func newBucketedTree(g *Grid, keys []morton.Key, capacity, arity int) (*BucketedTree, error) {
	switch arity {
	case 2, 4, 8:
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "arity %d not in {2,4,8}", arity)
	}
	keyRange := morton.Span(uint32(g.Size[0]-1), uint32(g.Size[1]-1), uint32(g.Size[2]-1))
	if capacity <= 0 || uint64(capacity) > keyRange {
		return nil, errors.Wrapf(ErrInvalidConfig, "bucket capacity %d outside [1,%d]", capacity, keyRange)
	}
	bucketCount := int((keyRange + uint64(capacity) - 1) / uint64(capacity))
	depth := TreeDepth(bucketCount, arity)
	nodes := NodeCount(depth, arity)
	if nodes >= maxTreeNodes {
		return nil, errors.Wrapf(ErrInvalidConfig, "capacity %d needs %d nodes", capacity, nodes)
	}

	t := &BucketedTree{
		grid:        g,
		arity:       arity,
		depth:       depth,
		capacity:    capacity,
		bucketCount: bucketCount,
		leafStart:   LevelStart(depth-1, arity),
		lo:          make([]morton.Key, nodes+1),
		hi:          make([]morton.Key, nodes+1),
		keys:        keys,
		offsets:     make([]int, bucketCount+1),
	}
	for i := range t.lo {
		t.lo[i], t.hi[i] = morton.Empty, morton.Empty
	}
	t.fillLeaves()
	t.fillInternal()

	for i := 1; i <= nodes; i++ {
		if morton.IsEmpty(t.lo[i]) {
			t.empty++
		}
	}
	logger.WithFields(logrus.Fields{
		"arity":    arity,
		"capacity": capacity,
		"buckets":  bucketCount,
		"depth":    depth,
		"nodes":    nodes,
	}).Debug("bucketed tree layout")
	return t, nil
}

// fillLeaves makes a single sweep over the sorted keys, growing each
// bucket's bound and counting its keys.
func (t *BucketedTree) fillLeaves() {
	capa := uint32(t.capacity)
	for _, k := range t.keys {
		b := int(uint32(k) / capa)
		t.offsets[b+1]++
		x, y, z := morton.Decode(k)
		c := morton.EncodeSimple(x, y, z)
		n := t.leafStart + b
		t.lo[n], t.hi[n] = UnionBounds(t.lo[n], t.hi[n], c, c)
	}
	for b := 1; b <= t.bucketCount; b++ {
		t.offsets[b] += t.offsets[b-1]
	}
}

// fillInternal unions children bottom-up, from level depth-2 to the root.
func (t *BucketedTree) fillInternal() {
	for level := t.depth - 2; level >= 0; level-- {
		end := LevelStart(level+1, t.arity)
		for n := LevelStart(level, t.arity); n < end; n++ {
			first := FirstChild(n, t.arity)
			lo, hi := morton.Empty, morton.Empty
			for c := first; c < first+t.arity; c++ {
				lo, hi = UnionBounds(lo, hi, t.lo[c], t.hi[c])
			}
			t.lo[n], t.hi[n] = lo, hi
		}
	}
}

func (t *BucketedTree) Kind() Kind { return KindBucketed }

func (t *BucketedTree) Grid() *Grid { return t.grid }

// Arity returns the branching factor.
func (t *BucketedTree) Arity() int { return t.arity }

// Depth returns the number of levels, leaves included.
func (t *BucketedTree) Depth() int { return t.depth }

// NodeCount returns the number of nodes in the arena.
func (t *BucketedTree) NodeCount() int { return len(t.lo) - 1 }

// BucketCount returns the number of key-space buckets.
func (t *BucketedTree) BucketCount() int { return t.bucketCount }

// NodeBounds returns the simple-encoded bound of node i.
func (t *BucketedTree) NodeBounds(i int) (lo, hi morton.Key) { return t.lo[i], t.hi[i] }

// LeafNode returns the handle of the leaf owning bucket b.
func (t *BucketedTree) LeafNode(b int) int { return t.leafStart + b }

// Bucket returns the sorted keys of bucket b.
func (t *BucketedTree) Bucket(b int) []morton.Key {
	return t.keys[t.offsets[b]:t.offsets[b+1]]
}

func (t *BucketedTree) Bounds() (Box, bool) {
	if morton.IsEmpty(t.lo[1]) {
		return Box{}, false
	}
	return boundsBox(t.lo[1], t.hi[1]), true
}

func (t *BucketedTree) Stats() Stats {
	nodes := t.NodeCount()
	bytes := int64(len(t.lo)+len(t.hi)+len(t.keys))*4 + int64(len(t.offsets))*8
	return Stats{
		Kind:     KindBucketed,
		Nodes:    nodes,
		Leaves:   nodes - t.leafStart + 1,
		Empty:    t.empty,
		Depth:    t.depth,
		Occupied: len(t.keys),
		Bytes:    bytes,
	}
}
