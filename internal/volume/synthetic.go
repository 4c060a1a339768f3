package volume

import (
	"math"
	"math/rand"
)

// Single returns an n^3 grid with one occupied cell.
func Single(n, x, y, z int, density float32) (*Grid, error) {
	g, err := NewGrid(n, n, n)
	if err != nil {
		return nil, err
	}
	g.Set(x, y, z, density)
	return g, nil
}

// Sphere fills cells whose centres lie inside a ball centred in the grid.
// radius is a fraction of half the smallest extent.
func Sphere(nx, ny, nz int, radius float64, density float32) (*Grid, error) {
	g, err := NewGrid(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	c := Vec3{float64(nx) / 2, float64(ny) / 2, float64(nz) / 2}
	r := radius * 0.5 * float64(min(nx, ny, nz))
	r2 := r * r
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				d := Vec3{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}.Sub(c)
				if d.Dot(d) <= r2 {
					g.Set(x, y, z, density)
				}
			}
		}
	}
	return g, nil
}

// Block fills the half-open cell range [lo, hi).
func Block(size, lo, hi [3]int, density float32) (*Grid, error) {
	g, err := NewGrid(size[0], size[1], size[2])
	if err != nil {
		return nil, err
	}
	for z := max(lo[2], 0); z < min(hi[2], size[2]); z++ {
		for y := max(lo[1], 0); y < min(hi[1], size[1]); y++ {
			for x := max(lo[0], 0); x < min(hi[0], size[0]); x++ {
				g.Set(x, y, z, density)
			}
		}
	}
	return g, nil
}

// Noise occupies each cell with probability fill and a density drawn
// uniformly from (0, 1]. The same seed always yields the same grid.
func Noise(nx, ny, nz int, fill float64, seed int64) (*Grid, error) {
	g, err := NewGrid(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range g.Data {
		if rng.Float64() < fill {
			g.Data[i] = float32(1 - rng.Float64())
		}
	}
	return g, nil
}

// Cloud is a smooth falloff blob used by the demo renderer: density decays
// from the centre and is modulated by low-frequency value noise.
func Cloud(n int, seed int64) (*Grid, error) {
	g, err := NewGrid(n, n, n)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	var ph [3]float64
	for i := range ph {
		ph[i] = rng.Float64() * 2 * math.Pi
	}
	h := float64(n) / 2
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				p := Vec3{(float64(x) + 0.5 - h) / h, (float64(y) + 0.5 - h) / h, (float64(z) + 0.5 - h) / h}
				r := p.Len()
				if r >= 1 {
					continue
				}
				w := 0.5 + 0.25*(math.Sin(5*p.X+ph[0])+math.Sin(5*p.Y+ph[1])*math.Sin(5*p.Z+ph[2]))
				if d := (1 - r) * w; d > 0.05 {
					g.Set(x, y, z, float32(d))
				}
			}
		}
	}
	return g, nil
}
