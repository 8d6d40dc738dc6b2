package scatter

import "math"

// Params maps integer LUT texel coordinates onto the physical parameter
// domain: the cosine of the sun zenith angle and the radial distance from
// the planet center. Both warps concentrate texels where the radiance
// varies fastest: a signed-square warp packs zenith cosines around the
// horizon and a squared warp packs radial distances near the surface.
type Params struct {
	Width  int
	Height int

	PlanetRadius float32
	Thickness    float32
}

// Physical parameter pair for the texel at (x, y). Texel centers never
// reach the exact domain boundaries.
func (p Params) Parameters(x, y int) (cosZenith, radialDistance float32) {
	u := (float32(x) + 0.5) / float32(p.Width)
	s := 2*u - 1
	cosZenith = s * s
	if s < 0 {
		cosZenith = -cosZenith
	}

	v := (float32(y) + 0.5) / float32(p.Height)
	radialDistance = p.PlanetRadius + v*v*p.Thickness
	return cosZenith, radialDistance
}

// Texel holding the given parameter pair; the inverse of Parameters.
// Out-of-domain parameters clamp to the boundary texels.
func (p Params) Texel(cosZenith, radialDistance float32) (x, y int) {
	s := float32(math.Sqrt(math.Abs(float64(cosZenith))))
	if cosZenith < 0 {
		s = -s
	}
	x = clampTexel(int((s+1)/2*float32(p.Width)), p.Width)

	rel := (radialDistance - p.PlanetRadius) / p.Thickness
	if rel < 0 {
		rel = 0
	}
	y = clampTexel(int(float32(math.Sqrt(float64(rel)))*float32(p.Height)), p.Height)
	return x, y
}

func clampTexel(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
