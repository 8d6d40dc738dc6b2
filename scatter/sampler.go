package scatter

import (
	"math"
	"math/bits"

	"github.com/auroralab/aurora/types"
)

// Direction returns sample direction i of n, uniformly distributed over
// the unit sphere. Directions come from the Hammersley low-discrepancy
// sequence mapped through the uniform sphere parameterization, so the set
// is deterministic and bit-stable for a fixed (i, n) pair. The polar axis
// is +Y, matching the kernel's zenith-up frame.
func Direction(i, n int) types.Vec3 {
	u := hammersley(uint32(i), uint32(n))

	cosTheta := 1 - 2*u[0]
	sinTheta := float32(math.Sqrt(float64(clamp01(1 - cosTheta*cosTheta))))
	phi := 2 * math.Pi * float64(u[1])

	return types.XYZ(
		sinTheta*float32(math.Cos(phi)),
		cosTheta,
		sinTheta*float32(math.Sin(phi)),
	)
}

// Point i of n from the 2D Hammersley set.
func hammersley(i, n uint32) types.Vec2 {
	return types.XY(float32(i)/float32(n), radicalInverse(i))
}

// Base-2 van der Corput radical inverse.
func radicalInverse(i uint32) float32 {
	return float32(bits.Reverse32(i)) * 2.3283064365386963e-10
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
