package render

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// Camera is a pinhole camera in grid space.
type Camera struct {
	Position volume.Vec3

	forward, right, up volume.Vec3
	tanHalf, aspect    float64
	width, height      int
}

// NewCamera builds a camera looking from pos at target. fovDeg is the
// vertical field of view.
func NewCamera(pos, target, up volume.Vec3, fovDeg float64, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "image size %dx%d", width, height)
	}
	if fovDeg <= 0 || fovDeg >= 180 {
		return nil, errors.Wrapf(ErrInvalidConfig, "fov %g outside (0,180)", fovDeg)
	}
	f := target.Sub(pos)
	if f.Len() == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "camera position equals look-at point")
	}
	f = f.Norm()
	r := f.Cross(up)
	if r.Len() < 1e-9 {
		return nil, errors.Wrap(ErrInvalidConfig, "camera up vector parallel to view direction")
	}
	r = r.Norm()
	return &Camera{
		Position: pos,
		forward:  f,
		right:    r,
		up:       r.Cross(f),
		tanHalf:  math.Tan(fovDeg * math.Pi / 360),
		aspect:   float64(width) / float64(height),
		width:    width,
		height:   height,
	}, nil
}

// FrameGrid places the camera on the -z side of the grid, looking at its
// centre from FrameDistance diagonals away.
func FrameGrid(g *volume.Grid) (pos, target volume.Vec3) {
	ext := g.Box().Max
	target = ext.Mul(0.5)
	pos = target.Sub(volume.Vec3{Z: FrameDistance * ext.Len()})
	return pos, target
}

// Ray returns the primary ray through pixel (px, py) offset by (du, dv)
// in [0,1). Pixel (0,0) is the top-left corner.
func (c *Camera) Ray(px, py int, du, dv float64) volume.Ray {
	x := (2*(float64(px)+du)/float64(c.width) - 1) * c.aspect * c.tanHalf
	y := (1 - 2*(float64(py)+dv)/float64(c.height)) * c.tanHalf
	d := c.forward.Add(c.right.Mul(x)).Add(c.up.Mul(y)).Norm()
	return volume.Ray{Origin: c.Position, Dir: d}
}
