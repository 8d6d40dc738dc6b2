package atmosphere

import "github.com/auroralab/aurora/types"

// Intersect a ray against a sphere centered on the planet. The ray leaves a
// point at radial distance r with direction cosine cosChi relative to the
// local zenith; only this 2D slice matters for concentric spheres. Returns
// the two parametric roots in ascending order; roots may be negative when
// the intersection lies behind the origin.
func SphereIntersection(radius, cosChi, r float32) (near, far float32, hit bool) {
	rcpR := 1 / r
	d := (radius * rcpR * radius * rcpR) - clamp01(1-cosChi*cosChi)
	if d < 0 {
		return 0, 0, false
	}
	s := sqrtf(d)
	return r * (-cosChi - s), r * (-cosChi + s), true
}

// Intersect a ray with the top of the atmosphere. Returns the parametric
// entry and exit distances; entry is clamped to zero for origins inside the
// shell. ok is false when the ray misses the shell entirely or the shell
// lies behind the origin.
func (m *Model) AtmosphereIntersection(origin, dir types.Vec3) (entry, exit float32, ok bool) {
	b := origin.Dot(dir)
	c := origin.Dot(origin) - m.TopRadius*m.TopRadius

	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	s := sqrtf(disc)
	entry, exit = -b-s, -b+s
	if exit < 0 {
		return 0, 0, false
	}
	if entry < 0 {
		entry = 0
	}
	return entry, exit, true
}

// Distance to the planet surface along a ray leaving a point at radial
// distance r with direction cosine cosChi, or ok=false when the ray clears
// the ground.
func (m *Model) GroundIntersection(cosChi, r float32) (dist float32, ok bool) {
	near, _, hit := SphereIntersection(m.PlanetRadius, cosChi, r)
	if !hit || near < 0 {
		return 0, false
	}
	return near, true
}

// Cosine of the angle at which the planet horizon sits for a point at
// radial distance r. Directions with a smaller zenith cosine intersect the
// ground.
func (m *Model) HorizonCosine(r float32) float32 {
	sinHoriz := m.PlanetRadius / r
	return -sqrtf(clamp01(1 - sinHoriz*sinHoriz))
}
