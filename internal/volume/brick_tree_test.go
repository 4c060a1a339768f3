package volume

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustBrick(t require.TestingT, g *Grid, brickSize int) *BrickTree {
	tr, err := NewBrickTree(g, brickSize, 4)
	require.NoError(t, err)
	return tr
}

func TestBrickInvalidConfig(t *testing.T) {
	g, err := NewGrid(4, 4, 4)
	require.NoError(t, err)
	for _, bs := range []int{0, -3, MaxDim + 1} {
		_, err := NewBrickTree(g, bs, 1)
		require.True(t, errors.Is(err, ErrInvalidConfig), "brick size %d", bs)
	}
}

func TestBrickEmptyAndSingle(t *testing.T) {
	g, err := NewGrid(8, 8, 8)
	require.NoError(t, err)
	tr := mustBrick(t, g, 4)
	require.Zero(t, tr.NodeCount())
	_, ok := tr.Bounds()
	require.False(t, ok)
	h := tr.Traverse(Ray{Vec3{1, 1, -1}, Vec3{0, 0, 1}}, inf)
	require.False(t, h.Valid())

	g.Set(6, 1, 2, 3)
	tr = mustBrick(t, g, 4)
	require.Equal(t, 1, tr.NodeCount())
	b, ok := tr.Bounds()
	require.True(t, ok)
	require.Equal(t, cellBox(6, 1, 2), b)
	h = tr.Traverse(Ray{Vec3{6.5, 1.5, -1}, Vec3{0, 0, 1}}, inf)
	require.InDelta(t, 3, h.Density, 1e-12)
	require.Equal(t, 1, h.Cells)
}

// checkBrickTree verifies the structural invariants of a built tree.
func checkBrickTree(t require.TestingT, g *Grid, tr *BrickTree) {
	n := tr.LeafCount()
	if n == 0 {
		require.Zero(t, tr.NodeCount())
		return
	}
	require.Equal(t, 2*n-1, tr.NodeCount())

	leaves := 0
	var union Box
	for i, nd := range tr.nodes {
		if nd.leaf {
			require.GreaterOrEqual(t, i, n-1, "leaf in internal range")
			if leaves == 0 {
				union = nd.box
			} else {
				union = union.Union(nd.box)
			}
			leaves++
		} else {
			require.Less(t, i, n-1, "internal node in leaf range")
			l, r := tr.nodes[nd.left], tr.nodes[nd.right]
			require.Equal(t, int32(i), l.parent)
			require.Equal(t, int32(i), r.parent)
			require.Equal(t, nd.box, l.box.Union(r.box))
		}
		if i == 0 {
			require.Equal(t, int32(noNode), nd.parent)
		} else {
			require.NotEqual(t, int32(noNode), nd.parent, "node %d orphaned", i)
		}
	}
	require.Equal(t, n, leaves)

	root, ok := tr.Bounds()
	require.True(t, ok)
	require.Equal(t, union, root)
	want, _ := g.OccupiedBounds()
	require.Equal(t, want, root)

	cells := 0
	for b := 0; b < n; b++ {
		require.NotEmpty(t, tr.BrickCells(b))
		cells += len(tr.BrickCells(b))
	}
	require.Equal(t, g.Occupied(), cells)
}

func TestBrickStructure(t *testing.T) {
	g, err := Noise(40, 33, 17, 0.05, 9)
	require.NoError(t, err)
	for _, bs := range []int{1, 2, 4, 8} {
		checkBrickTree(t, g, mustBrick(t, g, bs))
	}
}

func TestBrickStructureProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t)
		bs := rapid.IntRange(1, 5).Draw(t, "brickSize")
		checkBrickTree(t, g, mustBrick(t, g, bs))
	})
}

func TestBrickBudgetWindow(t *testing.T) {
	g, err := Block([3]int{1, 1, 16}, [3]int{0, 0, 0}, [3]int{1, 1, 16}, 1)
	require.NoError(t, err)
	tr := mustBrick(t, g, 2)
	r := Ray{Vec3{0.5, 0.5, -1}, Vec3{0, 0, 1}}
	require.Equal(t, 16, tr.Traverse(r, inf).Cells)
	short := tr.Traverse(r, 3.5)
	require.Equal(t, 4, short.Cells)
	require.InDelta(t, 5, short.Exit, 1e-12)

	// cells inside a brick are stored against the ray direction
	back := tr.Traverse(Ray{Vec3{0.5, 0.5, 17}, Vec3{0, 0, -1}}, 2.5)
	require.Equal(t, 3, back.Cells)
	require.InDelta(t, 1, back.Entry, 1e-12)
	require.InDelta(t, 4, back.Exit, 1e-12)
}

func TestBrickScenario(t *testing.T) {
	g, err := Single(4, 1, 1, 1, 1)
	require.NoError(t, err)
	h := mustBrick(t, g, 2).Traverse(Ray{Vec3{1.5, 1.5, -5}, Vec3{0, 0, 1}}, inf)
	assert.Equal(t, 1, h.Cells)
	assert.InDelta(t, 1, h.Density, 1e-12)
	assert.InDelta(t, 6, h.Entry, 1e-12)
	assert.InDelta(t, 7, h.Exit, 1e-12)
}

func drawRay(t *rapid.T, g *Grid) Ray {
	ext := Vec3{float64(g.Size[0]), float64(g.Size[1]), float64(g.Size[2])}
	o := Vec3{
		rapid.Float64Range(-2, ext.X+2).Draw(t, "ox"),
		rapid.Float64Range(-2, ext.Y+2).Draw(t, "oy"),
		rapid.Float64Range(-2, ext.Z+2).Draw(t, "oz"),
	}
	d := Vec3{
		rapid.Float64Range(-1, 1).Draw(t, "dx"),
		rapid.Float64Range(-1, 1).Draw(t, "dy"),
		rapid.Float64Range(-1, 1).Draw(t, "dz"),
	}
	return Ray{o, d}
}

func TestIndexKindsAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t)
		a, err := Build(g, Config{Kind: KindBucketed, Arity: rapid.SampledFrom([]int{2, 4, 8}).Draw(t, "arity"), BucketCapacity: 1})
		if err != nil {
			t.Fatalf("bucketed: %v", err)
		}
		b, err := Build(g, Config{Kind: KindBrick, BrickSize: rapid.IntRange(1, 6).Draw(t, "brickSize"), Workers: 2})
		if err != nil {
			t.Fatalf("brick: %v", err)
		}
		for i := 0; i < 8; i++ {
			r := drawRay(t, g)
			ha, hb := a.Traverse(r, inf), b.Traverse(r, inf)
			if ha.Cells != hb.Cells {
				t.Fatalf("ray %+v: bucketed crossed %d cells, brick %d", r, ha.Cells, hb.Cells)
			}
			if d := ha.Density - hb.Density; d > 1e-6 || d < -1e-6 {
				t.Fatalf("ray %+v: density %g vs %g", r, ha.Density, hb.Density)
			}
			if ha.Valid() && (ha.Entry != hb.Entry || ha.Exit != hb.Exit) {
				t.Fatalf("ray %+v: span [%g,%g] vs [%g,%g]", r, ha.Entry, ha.Exit, hb.Entry, hb.Exit)
			}
		}
	})
}

// sumWindows walks r in consecutive budget windows and totals them.
func sumWindows(idx Index, r Ray, budget float64) (cells int, density float64) {
	from := 0.0
	for step := 0; step < 1<<16; step++ {
		h := idx.TraverseFrom(r, from, budget)
		if !h.Valid() {
			break
		}
		cells += h.Cells
		density += h.Density
		from = h.Next(budget)
	}
	return cells, density
}

func TestWindowsPartitionFullWalk(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t)
		cfgs := []Config{
			{Kind: KindBucketed, Arity: rapid.SampledFrom([]int{2, 4, 8}).Draw(t, "arity"), BucketCapacity: rapid.IntRange(1, 8).Draw(t, "capacity")},
			{Kind: KindBrick, BrickSize: rapid.IntRange(1, 6).Draw(t, "brickSize"), Workers: 2},
		}
		budget := rapid.Float64Range(0.25, 6).Draw(t, "budget")
		for _, cfg := range cfgs {
			idx, err := Build(g, cfg)
			if err != nil {
				t.Skip("capacity above key range")
			}
			for i := 0; i < 6; i++ {
				r := drawRay(t, g)
				full := idx.Traverse(r, inf)
				cells, density := sumWindows(idx, r, budget)
				if cells != full.Cells {
					t.Fatalf("%s ray %+v: windows crossed %d cells, full walk %d", cfg.Kind, r, cells, full.Cells)
				}
				if d := density - full.Density; d > 1e-6 || d < -1e-6 {
					t.Fatalf("%s ray %+v: windows density %g, full walk %g", cfg.Kind, r, density, full.Density)
				}
			}
		}
	})
}

func TestBuildDispatch(t *testing.T) {
	g, err := Sphere(12, 12, 12, 0.7, 1)
	require.NoError(t, err)

	idx, err := Build(g, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, KindBucketed, idx.Kind())
	require.Same(t, g, idx.Grid())

	idx, err = Build(g, Config{Kind: KindBrick, BrickSize: 4})
	require.NoError(t, err)
	require.Equal(t, KindBrick, idx.Kind())
	st := idx.Stats()
	require.Equal(t, g.Occupied(), st.Occupied)
	require.Positive(t, st.Bytes)

	_, err = Build(g, Config{Kind: "octree"})
	require.True(t, errors.Is(err, ErrInvalidConfig))
	_, err = Build(nil, DefaultConfig())
	require.True(t, errors.Is(err, ErrInvalidConfig))

	k, err := ParseKind("brick")
	require.NoError(t, err)
	require.Equal(t, KindBrick, k)
	_, err = ParseKind("kd")
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	g, err := Block([3]int{8, 8, 8}, [3]int{0, 0, 0}, [3]int{2, 8, 8}, 1)
	require.NoError(t, err)
	for _, cfg := range []Config{
		{Kind: KindBucketed, Arity: 4, BucketCapacity: 32},
		{Kind: KindBrick, BrickSize: 4},
	} {
		idx, err := Build(g, cfg)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Dump(&buf, idx))
		out := buf.String()
		require.True(t, strings.HasPrefix(out, "["+string(cfg.Kind)+"]"), out)
		require.Contains(t, out, "LEAF")
		require.Contains(t, out, "min=(0,0,0) max=(2,8,8)")
	}
}
