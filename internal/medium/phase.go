package medium

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// PhaseKind is the closed set of supported phase functions.
type PhaseKind uint8

const (
	Isotropic PhaseKind = iota
	Rayleigh
	HenyeyGreenstein
)

func (k PhaseKind) String() string {
	switch k {
	case Isotropic:
		return "isotropic"
	case Rayleigh:
		return "rayleigh"
	case HenyeyGreenstein:
		return "hg"
	}
	return "unknown"
}

// hgIsotropicG is the |g| below which HG is sampled as isotropic.
const hgIsotropicG = 1e-3

// Phase is a phase function. G is the HG anisotropy in (-1, 1) and is
// ignored by the other kinds. Angles are measured between the incoming
// propagation direction and the outgoing one, so g > 0 scatters forward.
type Phase struct {
	Kind PhaseKind
	G    float64
}

// ParsePhase builds a phase function from its name ("isotropic",
// "rayleigh", "hg").
func ParsePhase(name string, g float64) (Phase, error) {
	switch strings.ToLower(name) {
	case "", "isotropic":
		return Phase{Kind: Isotropic}, nil
	case "rayleigh":
		return Phase{Kind: Rayleigh}, nil
	case "hg", "henyey-greenstein", "henyeygreenstein":
		if g <= -1 || g >= 1 {
			return Phase{}, errors.Errorf("hg anisotropy %g outside (-1,1)", g)
		}
		return Phase{Kind: HenyeyGreenstein, G: g}, nil
	}
	return Phase{}, errors.Errorf("unknown phase function %q", name)
}

// Eval returns the solid-angle density for the cosine between incoming and
// outgoing directions.
func (p Phase) Eval(cosT float64) float64 {
	switch p.Kind {
	case Rayleigh:
		return 3 / (16 * math.Pi) * (1 + cosT*cosT)
	case HenyeyGreenstein:
		g := p.G
		d := 1 + g*g - 2*g*cosT
		return (1 - g*g) / (4 * math.Pi * d * math.Sqrt(d))
	}
	return 1 / (4 * math.Pi)
}

// SampleCos draws the scattering cosine from u in [0,1).
func (p Phase) SampleCos(u float64) float64 {
	switch p.Kind {
	case Rayleigh:
		// invert F(μ) = (μ³ + 3μ + 4)/8 with Cardano's formula
		z := 2*u - 1
		r := math.Sqrt(4*z*z + 1)
		return clampCos(math.Cbrt(2*z+r) + math.Cbrt(2*z-r))
	case HenyeyGreenstein:
		g := p.G
		if math.Abs(g) < hgIsotropicG {
			break
		}
		s := (1 - g*g) / (1 - g + 2*g*u)
		return clampCos((1 + g*g - s*s) / (2 * g))
	}
	return 1 - 2*u
}

// Sample returns an outgoing direction for the unit incoming direction wi.
func (p Phase) Sample(wi volume.Vec3, u1, u2 float64) volume.Vec3 {
	return around(wi, p.SampleCos(u1), 2*math.Pi*u2)
}

func clampCos(c float64) float64 {
	if c < -1 {
		return -1
	}
	if c > 1 {
		return 1
	}
	return c
}
