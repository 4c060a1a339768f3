// Package medium implements the participating-medium estimator that turns
// an index traversal into absorption, scattering and transmittance events.
package medium

import "github.com/pkg/errors"

// ErrInvalidMedium is returned for physically meaningless coefficients.
var ErrInvalidMedium = errors.New("invalid medium")

// Medium is a homogeneous-coefficient medium whose local strength is the
// grid density times DensityScale.
type Medium struct {
	SigmaA       RGB
	SigmaS       RGB
	Phase        Phase
	Emission     RGB
	DensityScale float64

	sigmaT RGB
	albedo RGB
}

// New validates the coefficients and caches derived quantities.
// A zero scale means 1.
func New(sigmaA, sigmaS RGB, phase Phase, emission RGB, scale float64) (*Medium, error) {
	for _, c := range []RGB{sigmaA, sigmaS, emission} {
		if c.Min() < 0 {
			return nil, errors.Wrapf(ErrInvalidMedium, "negative coefficient %+v", c)
		}
	}
	if scale < 0 {
		return nil, errors.Wrapf(ErrInvalidMedium, "negative density scale %g", scale)
	}
	if scale == 0 {
		scale = 1
	}
	if phase.Kind == HenyeyGreenstein && (phase.G <= -1 || phase.G >= 1) {
		return nil, errors.Wrapf(ErrInvalidMedium, "hg anisotropy %g outside (-1,1)", phase.G)
	}
	st := sigmaA.Add(sigmaS)
	return &Medium{
		SigmaA:       sigmaA,
		SigmaS:       sigmaS,
		Phase:        phase,
		Emission:     emission,
		DensityScale: scale,
		sigmaT:       st,
		albedo:       sigmaS.Div(st),
	}, nil
}

// SigmaT is the extinction coefficient σa+σs.
func (m *Medium) SigmaT() RGB { return m.sigmaT }

// Albedo is the single-scattering albedo σs/σt.
func (m *Medium) Albedo() RGB { return m.albedo }

// Vacuum reports whether the medium never interacts.
func (m *Medium) Vacuum() bool { return m.sigmaT.Sum() == 0 }

// Attenuation returns exp(-σt·density·scale) for an accumulated density.
func (m *Medium) Attenuation(density float64) RGB {
	return m.sigmaT.Exp(density * m.DensityScale)
}
