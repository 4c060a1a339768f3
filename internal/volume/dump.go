package volume

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/morton"
)

// Dump prints the index with one tab of indentation per level: subtree
// counts and the box of every non-empty node.
func Dump(w io.Writer, idx Index) error {
	st := idx.Stats()
	fmt.Fprintf(w, "[%s] nodes=%d leaves=%d empty=%d depth=%d cells=%d\n",
		st.Kind, st.Nodes, st.Leaves, st.Empty, st.Depth, st.Occupied)
	switch t := idx.(type) {
	case *BucketedTree:
		t.dump(w, 1, 0)
	case *BrickTree:
		if r := t.root(); r != noNode {
			memo := make(map[int32]dumpCounts, len(t.nodes))
			t.count(r, memo)
			t.dump(w, r, 0, memo)
		}
	default:
		return errors.Errorf("dump: unsupported index %T", idx)
	}
	return nil
}

type dumpCounts struct {
	nodes  int
	leaves int
	cells  int
}

func fmtBox(b Box) string {
	return fmt.Sprintf("min=(%g,%g,%g) max=(%g,%g,%g)", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

func (t *BucketedTree) dump(w io.Writer, n, level int) {
	if morton.IsEmpty(t.lo[n]) {
		return
	}
	ind := strings.Repeat("\t", level)
	if level == t.depth-1 {
		b := n - t.leafStart
		fmt.Fprintf(w, "%sLEAF  #%d bucket=%d cells=%d | %s\n",
			ind, n, b, len(t.Bucket(b)), fmtBox(boundsBox(t.lo[n], t.hi[n])))
		return
	}
	fmt.Fprintf(w, "%sNODE  #%d | %s\n", ind, n, fmtBox(boundsBox(t.lo[n], t.hi[n])))
	first := FirstChild(n, t.arity)
	for c := first; c < first+t.arity; c++ {
		t.dump(w, c, level+1)
	}
}

func (t *BrickTree) count(i int32, memo map[int32]dumpCounts) dumpCounts {
	if c, ok := memo[i]; ok {
		return c
	}
	nd := &t.nodes[i]
	var c dumpCounts
	if nd.leaf {
		c = dumpCounts{nodes: 1, leaves: 1, cells: len(t.BrickCells(int(nd.brick)))}
	} else {
		lc, rc := t.count(nd.left, memo), t.count(nd.right, memo)
		c = dumpCounts{
			nodes:  1 + lc.nodes + rc.nodes,
			leaves: lc.leaves + rc.leaves,
			cells:  lc.cells + rc.cells,
		}
	}
	memo[i] = c
	return c
}

func (t *BrickTree) dump(w io.Writer, i int32, depth int, memo map[int32]dumpCounts) {
	ind := strings.Repeat("\t", depth)
	nd := &t.nodes[i]
	if nd.leaf {
		bx, by, bz := morton.Decode(t.keys[nd.brick])
		fmt.Fprintf(w, "%sLEAF  brick=(%d,%d,%d) cells=%d | %s\n",
			ind, bx, by, bz, memo[i].cells, fmtBox(nd.box))
		return
	}
	c := memo[i]
	fmt.Fprintf(w, "%sNODE  nodes=%d leaves=%d cells=%d | %s\n",
		ind, c.nodes, c.leaves, c.cells, fmtBox(nd.box))
	t.dump(w, nd.left, depth+1, memo)
	t.dump(w, nd.right, depth+1, memo)
}
