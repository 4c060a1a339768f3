package medium

import (
	"math"

	"github.com/ibfernandes/NarvalEngine-sub001/internal/volume"
)

// Sampler is a source of uniform numbers in [0,1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// Orthonormal returns two unit vectors that complete a (unit) into a
// right-handed basis.
func Orthonormal(a volume.Vec3) (u, v volume.Vec3) {
	h := volume.Vec3{X: 1}
	if math.Abs(a.X) > 0.9 {
		h = volume.Vec3{Y: 1}
	}
	u = h.Sub(a.Mul(h.Dot(a))).Norm()
	v = a.Cross(u)
	return u, v
}

// around builds the direction with polar cosine cosT and azimuth phi about
// the unit axis a.
func around(a volume.Vec3, cosT, phi float64) volume.Vec3 {
	s := 1 - cosT*cosT
	if s < 0 {
		s = 0
	}
	sinT := math.Sqrt(s)
	u, v := Orthonormal(a)
	return u.Mul(sinT * math.Cos(phi)).Add(v.Mul(sinT * math.Sin(phi))).Add(a.Mul(cosT)).Norm()
}

// UniformSphere maps two uniform numbers to a unit vector.
func UniformSphere(u1, u2 float64) volume.Vec3 {
	z := 1 - 2*u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return volume.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}
