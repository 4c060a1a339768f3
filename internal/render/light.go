package render

import (
	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/medium"
	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// Light is a directional light at infinity.
type Light struct {
	// Direction points from the scene towards the light (unit).
	Direction volume.Vec3
	Radiance  medium.RGB
}

// NewLight validates and normalises a directional light. The color is
// clamped to [0,1] and scaled by intensity.
func NewLight(dir volume.Vec3, color medium.RGB, intensity float64) (*Light, error) {
	n := dir.Norm()
	if n.Len() == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "light direction must be non-zero")
	}
	c := color.Clamp01()
	if c.Sum() <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "light color sum must be positive; got %.6g", c.Sum())
	}
	if intensity == 0 {
		intensity = 1
	}
	return &Light{Direction: n, Radiance: c.Scale(intensity)}, nil
}
