package volume

import (
	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/morton"
)

// MaxDim is the largest extent per axis that the Morton codec can address.
const MaxDim = morton.MaxCoord + 1

// ErrInvalidGrid is returned for grids whose extent or data do not agree.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is a dense scalar density field. Cells are stored x-fastest:
// index = x + Nx*(y + Ny*z). A cell is occupied iff its density is non-zero.
type Grid struct {
	Size [3]int
	Data []float32

	strideY, strideZ int
}

// NewGrid allocates a zero-filled grid.
func NewGrid(nx, ny, nz int) (*Grid, error) {
	if err := validateSize(nx, ny, nz); err != nil {
		return nil, err
	}
	return newGrid([3]int{nx, ny, nz}, make([]float32, nx*ny*nz)), nil
}

// WrapGrid wraps an existing density buffer without copying it.
func WrapGrid(size [3]int, data []float32) (*Grid, error) {
	if err := validateSize(size[0], size[1], size[2]); err != nil {
		return nil, err
	}
	if n := size[0] * size[1] * size[2]; len(data) != n {
		return nil, errors.Wrapf(ErrInvalidGrid, "data has %d cells, extent %v needs %d", len(data), size, n)
	}
	return newGrid(size, data), nil
}

func newGrid(size [3]int, data []float32) *Grid {
	return &Grid{
		Size:    size,
		Data:    data,
		strideY: size[0],
		strideZ: size[0] * size[1],
	}
}

func validateSize(nx, ny, nz int) error {
	for _, n := range [3]int{nx, ny, nz} {
		if n < 1 || n > MaxDim {
			return errors.Wrapf(ErrInvalidGrid, "extent %dx%dx%d outside [1,%d] per axis", nx, ny, nz, MaxDim)
		}
	}
	return nil
}

// Index returns the linear offset of cell (x, y, z).
func (g *Grid) Index(x, y, z int) int { return x + y*g.strideY + z*g.strideZ }

// Coord is the inverse of Index.
func (g *Grid) Coord(i int) (x, y, z int) {
	z = i / g.strideZ
	i -= z * g.strideZ
	y = i / g.strideY
	return i - y*g.strideY, y, z
}

// At returns the density of cell (x, y, z).
func (g *Grid) At(x, y, z int) float32 { return g.Data[g.Index(x, y, z)] }

// Set writes the density of cell (x, y, z).
func (g *Grid) Set(x, y, z int, v float32) { g.Data[g.Index(x, y, z)] = v }

// Cells returns the total number of cells.
func (g *Grid) Cells() int { return len(g.Data) }

// Occupied counts the non-zero cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, v := range g.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Box returns the full extent of the grid, [0, Size].
func (g *Grid) Box() Box {
	return Box{Max: Vec3{float64(g.Size[0]), float64(g.Size[1]), float64(g.Size[2])}}
}

// OccupiedBounds returns the tight box around all non-zero cells.
func (g *Grid) OccupiedBounds() (Box, bool) {
	var b Box
	found := false
	for i, v := range g.Data {
		if v == 0 {
			continue
		}
		x, y, z := g.Coord(i)
		c := cellBox(uint32(x), uint32(y), uint32(z))
		if !found {
			b, found = c, true
			continue
		}
		b = b.Union(c)
	}
	return b, found
}

// CellOf maps a point to the cell containing it.
func (g *Grid) CellOf(p Vec3) (x, y, z int, ok bool) {
	if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
		return 0, 0, 0, false
	}
	if p.X < 0 || p.Y < 0 || p.Z < 0 {
		return 0, 0, 0, false
	}
	x, y, z = int(p.X), int(p.Y), int(p.Z)
	if x >= g.Size[0] || y >= g.Size[1] || z >= g.Size[2] {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

// occupiedKeys returns the Morton keys of all occupied cells, sorted.
func (g *Grid) occupiedKeys() []morton.Key {
	keys := make([]morton.Key, 0, g.Occupied())
	for z := 0; z < g.Size[2]; z++ {
		for y := 0; y < g.Size[1]; y++ {
			row := g.Index(0, y, z)
			for x, v := range g.Data[row : row+g.Size[0]] {
				if v != 0 {
					keys = append(keys, morton.Encode(uint32(x), uint32(y), uint32(z)))
				}
			}
		}
	}
	morton.Sort(keys)
	return keys
}
