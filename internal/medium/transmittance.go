package medium

import (
	"math"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// TransmittanceOptions bound the shadow-ray estimate.
type TransmittanceOptions struct {
	// Budget is the depth budget of each traversal step.
	Budget float64
	// Threshold stops the march once every channel falls below it and
	// reports full occlusion.
	Threshold float64
	// MaxSteps caps the number of traversal steps.
	MaxSteps int
}

// DefaultTransmittanceOptions are tuned for unit-cell grids.
func DefaultTransmittanceOptions() TransmittanceOptions {
	return TransmittanceOptions{Budget: 4, Threshold: 1e-3, MaxSteps: 256}
}

// Transmittance marches r through idx in budget-sized windows and
// multiplies the attenuation of each. Every window resumes where the last
// one ended, so each cell on the path is counted once. Terminating below
// the threshold biases the estimate towards occlusion.
func Transmittance(idx volume.Index, r volume.Ray, m *Medium, opts TransmittanceOptions) RGB {
	tr := Gray(1)
	if m.Vacuum() {
		return tr
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = math.Inf(1)
	}
	r.Dir = r.Dir.Norm()
	from := 0.0
	for step := 0; step < opts.MaxSteps; step++ {
		h := idx.TraverseFrom(r, from, budget)
		if !h.Valid() {
			break
		}
		tr = tr.Mul(m.Attenuation(h.Density))
		if tr.Max() < opts.Threshold {
			return RGB{}
		}
		from = h.Next(budget)
	}
	return tr
}
