// Package volume indexes a dense density grid down to its occupied cells and
// walks that index against rays.
package volume

import (
	"math"
	"time"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is returned by the builders for unusable parameters.
var ErrInvalidConfig = errors.New("invalid index config")

// Kind names an index variant.
type Kind string

const (
	// KindBucketed is the Morton-bucketed complete N-ary tree.
	KindBucketed Kind = "bucketed"
	// KindBrick is the brick-level binary radix tree.
	KindBrick Kind = "brick"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBucketed, KindBrick:
		return k, nil
	}
	return "", errors.Wrapf(ErrInvalidConfig, "unknown index kind %q", s)
}

// Config selects and parameterises an index.
type Config struct {
	Kind           Kind `json:"kind" toml:"kind"`
	Arity          int  `json:"arity" toml:"arity"`
	BucketCapacity int  `json:"bucketCapacity" toml:"bucketCapacity"`
	BrickSize      int  `json:"brickSize" toml:"brickSize"`
	Workers        int  `json:"workers" toml:"workers"`
}

// DefaultConfig returns a binary bucketed tree with 64-key buckets.
func DefaultConfig() Config {
	return Config{
		Kind:           KindBucketed,
		Arity:          DefaultArity,
		BucketCapacity: DefaultBucketCapacity,
		BrickSize:      DefaultBrickSize,
	}
}

// Hit is the result of walking an index along a ray. Entry and Exit are
// the extreme parametric distances over all occupied cells the ray crossed;
// Density is the sum of their densities.
type Hit struct {
	Entry, Exit float64
	Density     float64
	Cells       int
}

// Miss is the sentinel result: an empty span and zero density.
func Miss() Hit {
	return Hit{Entry: math.Inf(1), Exit: math.Inf(-1)}
}

// Valid reports whether any cell was crossed.
func (h Hit) Valid() bool { return h.Exit >= h.Entry }

// Length is the span covered in front of the origin.
func (h Hit) Length() float64 {
	if !h.Valid() {
		return 0
	}
	return h.Exit - math.Max(h.Entry, 0)
}

func (h *Hit) add(t0, t1 float64, d float32) {
	if t0 < h.Entry {
		h.Entry = t0
	}
	if t1 > h.Exit {
		h.Exit = t1
	}
	h.Density += float64(d)
	h.Cells++
}

// Next returns where the window that produced h ends: the from argument
// for the following TraverseFrom call along the same ray.
func (h Hit) Next(budget float64) float64 {
	start := math.Max(h.Entry, 0)
	if end := start + budget; end > start {
		return end
	}
	// zero-width window
	return math.Nextafter(start, math.Inf(1))
}

// Stats summarises a built index.
type Stats struct {
	Kind     Kind  `json:"kind"`
	Nodes    int   `json:"nodes"`
	Leaves   int   `json:"leaves"`
	Empty    int   `json:"emptyNodes"`
	Depth    int   `json:"depth"`
	Occupied int   `json:"occupiedCells"`
	Bytes    int64 `json:"bytes"`
}

// Index is an immutable spatial index over a grid's occupied cells. All
// methods are safe for concurrent use.
type Index interface {
	// Traverse walks the ray through the index and accumulates the cells
	// entered within budget of the nearest one; pass math.Inf(1) for a
	// full walk. It is TraverseFrom(r, 0, budget).
	Traverse(r Ray, budget float64) Hit
	// TraverseFrom accumulates the cells whose entry distance (clamped to
	// zero) lies in [s, s+budget), where s is the nearest such entry not
	// before from. Successive windows along one ray, each starting at the
	// previous Hit.Next, count every crossed cell exactly once.
	TraverseFrom(r Ray, from, budget float64) Hit
	// Bounds returns the box around all occupied cells.
	Bounds() (Box, bool)
	Stats() Stats
	Kind() Kind
	// Grid returns the indexed grid.
	Grid() *Grid
}

// Build constructs the index described by cfg over g.
func Build(g *Grid, cfg Config) (Index, error) {
	if g == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil grid")
	}
	if err := validateSize(g.Size[0], g.Size[1], g.Size[2]); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	start := time.Now()
	var (
		idx Index
		err error
	)
	switch cfg.Kind {
	case KindBucketed, "":
		idx, err = NewBucketedTree(g, cfg.BucketCapacity, cfg.Arity)
	case KindBrick:
		idx, err = NewBrickTree(g, cfg.BrickSize, cfg.Workers)
	default:
		err = errors.Wrapf(ErrInvalidConfig, "unknown index kind %q", cfg.Kind)
	}
	if err != nil {
		buildErrors.WithLabelValues(string(cfg.Kind)).Inc()
		return nil, err
	}
	elapsed := time.Since(start)
	st := idx.Stats()
	observeBuild(st, elapsed)
	logger.WithFields(logrus.Fields{
		"kind":     st.Kind,
		"nodes":    st.Nodes,
		"leaves":   st.Leaves,
		"depth":    st.Depth,
		"occupied": st.Occupied,
		"memory":   units.BytesSize(float64(st.Bytes)),
		"elapsed":  elapsed,
	}).Debug("index built")
	return idx, nil
}

// cellWalker enumerates the occupied cells a ray crosses. keep prunes
// subtrees by the ray span of their bounding box; cell receives the span
// and density of every crossed cell.
type cellWalker interface {
	walkCells(r Ray, rr rayRecips, keep func(t0, t1 float64) bool, cell func(t0, t1 float64, d float32))
}

// traverseWindow finds the window start with a nearest-entry pass, then
// accumulates the cells entered inside the window. The result depends
// only on the cell spans, never on the order the walker visits them.
func traverseWindow(w cellWalker, r Ray, from, budget float64) Hit {
	h := Miss()
	rr := computeRayRecips(r.Dir)
	if math.IsNaN(budget) {
		budget = 0
	}
	from = math.Max(from, 0)
	if math.IsNaN(from) || math.IsInf(from, 1) {
		return h
	}

	start, end := from, math.Inf(1)
	if !math.IsInf(budget, 1) {
		start = math.Inf(1)
		w.walkCells(r, rr, func(t0, t1 float64) bool {
			return t1 >= from && math.Max(t0, 0) < start
		}, func(t0, _ float64, _ float32) {
			if e := math.Max(t0, 0); e >= from && e < start {
				start = e
			}
		})
		if math.IsInf(start, 1) {
			return h
		}
		end = start + math.Max(budget, 0)
	}

	w.walkCells(r, rr, func(t0, t1 float64) bool {
		return t1 >= start && math.Max(t0, 0) <= end
	}, func(t0, t1 float64, d float32) {
		// the nearest cell always counts, even for a zero budget
		if e := math.Max(t0, 0); e >= start && (e < end || e == start) {
			h.add(t0, t1, d)
		}
	})
	return h
}
