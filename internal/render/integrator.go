package render

import (
	"math"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/medium"
	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// Integrator estimates radiance along a ray through a medium lit by one
// directional light, with next-event estimation at every scattering
// vertex.
type Integrator struct {
	Index      volume.Index
	Medium     *medium.Medium
	Light      *Light
	Background medium.RGB
	MaxBounces int
	MaxSteps   int
	// Budget bounds primary and continuation traversals; +Inf walks all.
	Budget float64
	Shadow medium.TransmittanceOptions
}

func (in *Integrator) budget() float64 {
	if in.Budget <= 0 {
		return math.Inf(1)
	}
	return in.Budget
}

// Li returns the radiance arriving along r. Events are recorded in tally.
func (in *Integrator) Li(r volume.Ray, rng medium.Sampler, tally *medium.Tally) medium.RGB {
	var L medium.RGB
	beta := medium.Gray(1)
	m := in.Medium
	budget := in.budget()
	bounces := 0

	maxSteps := in.MaxSteps
	if maxSteps <= 0 {
		maxSteps = MaxSteps
	}
	// from is the start of the next traversal window along r
	from := 0.0
	for step := 0; step < maxSteps; step++ {
		h := in.Index.TraverseFrom(r, from, budget)
		if !h.Valid() {
			return L.Add(beta.Mul(in.Background))
		}
		if !m.Emission.IsBlack() {
			L = L.Add(beta.Mul(m.Emission).Scale(h.Density * m.DensityScale))
		}

		it := m.Sample(r, h, rng)
		tally.Add(it.Event)
		beta = beta.Mul(it.Attenuation)
		if it.Event != medium.Scattered {
			// stay on the ray; the next window picks up the cells beyond
			from = h.Next(budget)
			continue
		}
		wi := r.Dir
		r, from = it.Ray, 0

		// direct light through the medium
		if in.Light != nil {
			wl := in.Light.Direction
			tr := medium.Transmittance(in.Index, volume.Ray{Origin: r.Origin, Dir: wl}, m, in.Shadow)
			if !tr.IsBlack() {
				L = L.Add(beta.Mul(in.Light.Radiance).Mul(tr).Scale(m.Phase.Eval(wi.Dot(wl))))
			}
		}
		bounces++
		if bounces > in.MaxBounces || beta.Max() == 0 {
			break
		}
	}
	return L
}
