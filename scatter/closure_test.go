package scatter

import (
	"math"
	"testing"

	"github.com/auroralab/aurora/types"
)

func TestClosureGeometricSeries(t *testing.T) {
	type spec struct {
		radiance types.Vec3
		density  types.Vec3
		expect   types.Vec3
	}

	// All values picked so the float32 division is exact.
	specs := []spec{
		{types.XYZ(0.1, 0.1, 0.1), types.XYZ(0.2, 0.2, 0.2), types.XYZ(0.125, 0.125, 0.125)},
		{types.XYZ(1, 2, 3), types.XYZ(0.5, 0.75, 0), types.XYZ(2, 8, 3)},
		{types.Vec3{}, types.XYZ(0.9, 0.5, 0.1), types.Vec3{}},
	}

	for idx, s := range specs {
		if got := Closure(s.radiance, s.density); got != s.expect {
			t.Fatalf("[spec %d] expected %v; got %v", idx, s.expect, got)
		}
	}
}

// A per-bounce gain at or above one has no convergent series. The division
// is deliberately unguarded so such inputs surface as non-physical output
// instead of being silently clamped.
func TestClosureDivergentDensity(t *testing.T) {
	atOne := Closure(types.XYZ(0.1, 0.1, 0.1), types.XYZ(1, 1, 1))
	for c := 0; c < 3; c++ {
		if !math.IsInf(float64(atOne[c]), 1) {
			t.Fatalf("channel %d: expected +Inf at unit density; got %v", c, atOne[c])
		}
	}

	aboveOne := Closure(types.XYZ(0.1, 0.1, 0.1), types.XYZ(2, 2, 2))
	for c := 0; c < 3; c++ {
		if aboveOne[c] >= 0 {
			t.Fatalf("channel %d: expected a negative estimate above unit density; got %v", c, aboveOne[c])
		}
	}
}
