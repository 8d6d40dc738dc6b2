package atmosphere

import (
	"math"
	"testing"

	"github.com/auroralab/aurora/types"
)

func TestSphereIntersection(t *testing.T) {
	type spec struct {
		radius   float32
		cosChi   float32
		r        float32
		wantHit  bool
		wantNear float32
		wantFar  float32
	}

	specs := []spec{
		// Straight down onto a unit sphere from r=2.
		{1, -1, 2, true, 1, 3},
		// Straight up: sphere behind the origin.
		{1, 1, 2, true, -3, -1},
		// Sideways from r=2 misses the unit sphere.
		{1, 0, 2, false, 0, 0},
		// Grazing ray exactly touches the sphere.
		{1, -float32(math.Sqrt(3)) / 2, 2, true, float32(math.Sqrt(3)), float32(math.Sqrt(3))},
		// From the surface, any downward cosine hits at distance zero.
		{1, -0.5, 1, true, 0, 1},
	}

	for idx, s := range specs {
		near, far, hit := SphereIntersection(s.radius, s.cosChi, s.r)
		if hit != s.wantHit {
			t.Fatalf("[spec %d] expected hit=%v; got %v", idx, s.wantHit, hit)
		}
		if !hit {
			continue
		}
		if math.Abs(float64(near-s.wantNear)) > 1e-3 || math.Abs(float64(far-s.wantFar)) > 1e-3 {
			t.Fatalf("[spec %d] expected roots (%f, %f); got (%f, %f)", idx, s.wantNear, s.wantFar, near, far)
		}
	}
}

func TestAtmosphereIntersection(t *testing.T) {
	m := testModel(t)

	// From inside the shell the entry distance is always zero and the exit
	// must match the closed-form root.
	origin := types.XYZ(0, m.PlanetRadius+10, 0)
	for _, cosChi := range []float32{1, 0.5, 0, -0.02} {
		sinChi := float32(math.Sqrt(float64(1 - cosChi*cosChi)))
		dir := types.XYZ(sinChi, cosChi, 0)

		entry, exit, ok := m.AtmosphereIntersection(origin, dir)
		if !ok {
			t.Fatalf("cosChi=%f: expected intersection", cosChi)
		}
		if entry != 0 {
			t.Fatalf("cosChi=%f: expected zero entry distance; got %f", cosChi, entry)
		}

		_, far, hit := SphereIntersection(m.TopRadius, cosChi, origin.Len())
		if !hit {
			t.Fatalf("cosChi=%f: closed form disagrees", cosChi)
		}
		if math.Abs(float64(exit-far)) > 1e-2*float64(far) {
			t.Fatalf("cosChi=%f: expected exit %f; got %f", cosChi, far, exit)
		}

		// The exit point must sit on the shell.
		exitR := origin.Add(dir.Mul(exit)).Len()
		if math.Abs(float64(exitR-m.TopRadius)) > 0.5 {
			t.Fatalf("cosChi=%f: exit point at radius %f, want %f", cosChi, exitR, m.TopRadius)
		}
	}

	// Pointing away from a shell that is entirely behind the origin.
	if _, _, ok := m.AtmosphereIntersection(types.XYZ(0, 2*m.TopRadius, 0), types.XYZ(0, 1, 0)); ok {
		t.Fatal("expected no intersection for a ray leaving the shell behind")
	}
}

func TestGroundIntersection(t *testing.T) {
	m := testModel(t)
	r := m.PlanetRadius + 50

	if _, ok := m.GroundIntersection(0.2, r); ok {
		t.Fatal("expected upward ray to clear the ground")
	}

	dist, ok := m.GroundIntersection(-1, r)
	if !ok {
		t.Fatal("expected downward ray to hit the ground")
	}
	if math.Abs(float64(dist-50)) > 1e-2 {
		t.Fatalf("expected ground at distance 50; got %f", dist)
	}
}

func TestHorizonCosine(t *testing.T) {
	m := testModel(t)

	if got := m.HorizonCosine(m.PlanetRadius); got != 0 {
		t.Fatalf("expected zero horizon cosine at the surface; got %f", got)
	}
	if got, want := m.HorizonCosine(2*m.PlanetRadius), -float32(math.Sqrt(0.75)); math.Abs(float64(got-want)) > 1e-6 {
		t.Fatalf("expected horizon cosine %f at 2R; got %f", want, got)
	}

	// Directions right at the horizon cosine must graze the planet.
	r := m.PlanetRadius + 30
	if _, ok := m.GroundIntersection(m.HorizonCosine(r)-1e-3, r); !ok {
		t.Fatal("expected a ray just below the horizon to hit the ground")
	}
	if _, ok := m.GroundIntersection(m.HorizonCosine(r)+1e-3, r); ok {
		t.Fatal("expected a ray just above the horizon to clear the ground")
	}
}
