package medium

import (
	"math"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// ExitEpsilon moves continuation rays just past the exit of a span.
const ExitEpsilon = 1e-4

// Interaction is the result of one estimator step: what happened, the ray
// to continue with and the throughput factor to apply.
type Interaction struct {
	Event       Event
	Ray         volume.Ray
	Attenuation RGB
	// T is the sampled collision distance along the incoming ray.
	T float64
}

// Sample draws a free-flight distance inside the traversal span h of ray
// r and classifies it. r.Dir is expected to be unit length.
func (m *Medium) Sample(r volume.Ray, h volume.Hit, rng Sampler) Interaction {
	beyond := volume.Ray{Origin: r.At(h.Exit + ExitEpsilon), Dir: r.Dir}
	if !h.Valid() {
		return Interaction{Event: Escaped, Ray: r, Attenuation: Gray(1), T: math.Inf(1)}
	}
	if m.Vacuum() {
		return Interaction{Event: Escaped, Ray: beyond, Attenuation: Gray(1), T: math.Inf(1)}
	}

	ch := pickChannel(m.sigmaT, rng.Float64())
	st := m.sigmaT.Ch(ch)
	s := -math.Log(1-rng.Float64()) / st
	t := math.Max(h.Entry, 0) + s
	if t > h.Exit {
		return Interaction{Event: Escaped, Ray: beyond, Attenuation: Gray(1), T: t}
	}

	if rng.Float64() < m.SigmaA.Ch(ch)/st {
		return Interaction{Event: Absorbed, Ray: beyond, Attenuation: m.Attenuation(h.Density), T: t}
	}
	if h.Density == 0 {
		return Interaction{Event: PassThrough, Ray: beyond, Attenuation: Gray(1), T: t}
	}
	wo := m.Phase.Sample(r.Dir, rng.Float64(), rng.Float64())
	return Interaction{
		Event:       Scattered,
		Ray:         volume.Ray{Origin: r.At(t), Dir: wo},
		Attenuation: m.albedo,
		T:           t,
	}
}
