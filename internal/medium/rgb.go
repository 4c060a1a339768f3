package medium

import "math"

// Channel indices.
const (
	ChR = iota
	ChG
	ChB
)

// RGB is a per-channel spectral quantity (coefficients, radiance, throughput).
type RGB struct {
	R, G, B float64
}

// Gray returns RGB{v, v, v}.
func Gray(v float64) RGB { return RGB{v, v, v} }

func (c RGB) Add(o RGB) RGB       { return RGB{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c RGB) Mul(o RGB) RGB       { return RGB{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c RGB) Scale(s float64) RGB { return RGB{c.R * s, c.G * s, c.B * s} }
func (c RGB) Sum() float64        { return c.R + c.G + c.B }
func (c RGB) Max() float64        { return math.Max(c.R, math.Max(c.G, c.B)) }
func (c RGB) Min() float64        { return math.Min(c.R, math.Min(c.G, c.B)) }

// Ch returns channel i.
func (c RGB) Ch(i int) float64 {
	switch i {
	case ChR:
		return c.R
	case ChG:
		return c.G
	default:
		return c.B
	}
}

// Exp returns exp(-c*s) per channel.
func (c RGB) Exp(s float64) RGB {
	return RGB{math.Exp(-c.R * s), math.Exp(-c.G * s), math.Exp(-c.B * s)}
}

// Div divides per channel; a zero denominator yields zero.
func (c RGB) Div(o RGB) RGB {
	d := func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}
	return RGB{d(c.R, o.R), d(c.G, o.G), d(c.B, o.B)}
}

// Luminance uses Rec. 709 weights.
func (c RGB) Luminance() float64 { return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B }

// IsBlack reports whether every channel is zero.
func (c RGB) IsBlack() bool { return c.R == 0 && c.G == 0 && c.B == 0 }

// Clamp01 clamps each channel to [0,1].
func (c RGB) Clamp01() RGB {
	cl := func(x float64) float64 {
		if x < 0 {
			return 0
		}
		if x > 1 {
			return 1
		}
		return x
	}
	return RGB{cl(c.R), cl(c.G), cl(c.B)}
}

// pickChannel selects a channel with probability proportional to c.
func pickChannel(c RGB, u float64) int {
	u *= c.Sum()
	if u < c.R {
		return ChR
	}
	if u < c.R+c.G {
		return ChG
	}
	return ChB
}
