package atmosphere

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate/quad"
)

// Every phase function must integrate to one over the sphere:
// 2*pi * integral of p(cosTheta) over [-1, 1].
func TestPhaseNormalization(t *testing.T) {
	m := testModel(t)

	type spec struct {
		name  string
		phase func(float32) float32
	}

	specs := []spec{
		{"isotropic", func(c float32) float32 { return IsotropicPhase() }},
		{"air", AirPhase},
		{"aerosol", m.AerosolPhase},
	}

	for _, s := range specs {
		integral := 2 * math.Pi * quad.Fixed(func(c float64) float64 {
			return float64(s.phase(float32(c)))
		}, -1, 1, 200, nil, 0)

		if !scalar.EqualWithinRel(integral, 1, 1e-3) {
			t.Fatalf("%s: expected unit integral; got %g", s.name, integral)
		}
	}
}

func TestAerosolPhaseForwardLobe(t *testing.T) {
	m := testModel(t)

	forward := m.AerosolPhase(1)
	backward := m.AerosolPhase(-1)
	if forward <= backward {
		t.Fatalf("expected forward scattering to dominate; got forward=%f backward=%f", forward, backward)
	}

	// Rayleigh is symmetric.
	if AirPhase(0.5) != AirPhase(-0.5) {
		t.Fatal("expected the air phase to be symmetric")
	}
}
