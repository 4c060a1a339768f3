package volume

import "math"

func (t *BrickTree) Traverse(r Ray, budget float64) Hit {
	return traverseWindow(t, r, 0, budget)
}

func (t *BrickTree) TraverseFrom(r Ray, from, budget float64) Hit {
	return traverseWindow(t, r, from, budget)
}

// walkCells descends the tree with an explicit stack, visiting nearer hit
// children first, and tests every occupied cell of each hit brick.
func (t *BrickTree) walkCells(r Ray, rr rayRecips, keep func(t0, t1 float64) bool, cell func(t0, t1 float64, d float32)) {
	root := t.root()
	if root == noNode {
		return
	}
	O := r.Origin
	box := &t.nodes[root].box
	if t0, t1, ok := rayBox(O, box.Min, box.Max, rr); !ok || !keep(t0, t1) {
		return
	}

	var buf [64]int32
	stack := append(buf[:0], root)
	for len(stack) > 0 {
		// pop
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &t.nodes[i]

		if nd.leaf {
			t.brickCells(nd.brick, O, rr, cell)
			continue
		}

		// order children near→far (push far first so near is processed next)
		lb, rb := &t.nodes[nd.left].box, &t.nodes[nd.right].box
		lT, lT1, lOK := rayBox(O, lb.Min, lb.Max, rr)
		rT, rT1, rOK := rayBox(O, rb.Min, rb.Max, rr)
		lOK = lOK && keep(lT, lT1)
		rOK = rOK && keep(rT, rT1)
		if lOK && rOK {
			if math.Max(lT, 0) <= math.Max(rT, 0) {
				stack = append(stack, nd.right, nd.left)
			} else {
				stack = append(stack, nd.left, nd.right)
			}
		} else if lOK {
			stack = append(stack, nd.left)
		} else if rOK {
			stack = append(stack, nd.right)
		}
	}
}

// brickCells reports the occupied cells of brick b crossed by the ray.
func (t *BrickTree) brickCells(b int32, O Vec3, rr rayRecips, cell func(t0, t1 float64, d float32)) {
	g := t.grid
	for _, idx := range t.cells[t.cellOffsets[b]:t.cellOffsets[b+1]] {
		x, y, z := g.Coord(int(idx))
		c := cellBox(uint32(x), uint32(y), uint32(z))
		if t0, t1, ok := rayBox(O, c.Min, c.Max, rr); ok {
			cell(t0, t1, g.Data[idx])
		}
	}
}
