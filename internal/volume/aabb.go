package volume

import "math"

// Box is an axis-aligned box in grid space.
type Box struct {
	Min, Max Vec3
}

// Union returns the smallest box enclosing a and b.
func (a Box) Union(b Box) Box { return Box{a.Min.Min(b.Min), a.Max.Max(b.Max)} }

// cellBox is the unit box [c, c+1] of a grid cell.
func cellBox(x, y, z uint32) Box {
	fx, fy, fz := float64(x), float64(y), float64(z)
	return Box{Vec3{fx, fy, fz}, Vec3{fx + 1, fy + 1, fz + 1}}
}

type rayRecips struct {
	invX, invY, invZ float64
	parX, parY, parZ bool // parallel flags (|D| < eps)
}

func computeRayRecips(d Vec3) rayRecips {
	const eps = 1e-18
	rr := rayRecips{}
	if x := d.X; x > eps || x < -eps {
		rr.invX = 1 / x
	} else {
		rr.parX = true
	}
	if y := d.Y; y > eps || y < -eps {
		rr.invY = 1 / y
	} else {
		rr.parY = true
	}
	if z := d.Z; z > eps || z < -eps {
		rr.invZ = 1 / z
	} else {
		rr.parZ = true
	}
	return rr
}

// rayBox clips the ray against the box and returns the parametric entry and
// exit distances. Entry may be negative when the origin is inside the box.
// A zero direction component is a parallel slab: the ray hits only if the
// origin lies between the two planes.
func rayBox(O Vec3, minP, maxP Vec3, rr rayRecips) (t0, t1 float64, ok bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	// X
	if !rr.parX {
		a := (minP.X - O.X) * rr.invX
		b := (maxP.X - O.X) * rr.invX
		if a > b {
			a, b = b, a
		}
		if a > tmin {
			tmin = a
		}
		if b < tmax {
			tmax = b
		}
	} else if O.X < minP.X || O.X > maxP.X {
		return 0, 0, false
	}

	// Y
	if !rr.parY {
		a := (minP.Y - O.Y) * rr.invY
		b := (maxP.Y - O.Y) * rr.invY
		if a > b {
			a, b = b, a
		}
		if a > tmin {
			tmin = a
		}
		if b < tmax {
			tmax = b
		}
	} else if O.Y < minP.Y || O.Y > maxP.Y {
		return 0, 0, false
	}

	// Z
	if !rr.parZ {
		a := (minP.Z - O.Z) * rr.invZ
		b := (maxP.Z - O.Z) * rr.invZ
		if a > b {
			a, b = b, a
		}
		if a > tmin {
			tmin = a
		}
		if b < tmax {
			tmax = b
		}
	} else if O.Z < minP.Z || O.Z > maxP.Z {
		return 0, 0, false
	}

	// a fully parallel (zero) direction never has a finite span
	if rr.parX && rr.parY && rr.parZ {
		return 0, 0, false
	}
	if tmax < 0 || tmin > tmax {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// Intersect clips r against the box. See rayBox.
func (a Box) Intersect(r Ray) (t0, t1 float64, ok bool) {
	return rayBox(r.Origin, a.Min, a.Max, computeRayRecips(r.Dir))
}
