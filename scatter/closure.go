package scatter

import (
	"github.com/auroralab/aurora/types"
)

// Closure converts one bounce of gathered radiance into the limit of the
// infinite bounce series. Treating the density estimate D as the per-bounce
// energy transfer ratio, the series R + R*D + R*D^2 + ... collapses to the
// geometric sum R / (1 - D), evaluated independently per channel.
//
// The division is intentionally not guarded: a density at or above one means
// the medium gains energy on every bounce, and the non-finite result makes
// that input error visible instead of masking it with a clamp.
func Closure(radiance, density types.Vec3) types.Vec3 {
	return types.XYZ(
		radiance[0]/(1-density[0]),
		radiance[1]/(1-density[1]),
		radiance[2]/(1-density[2]),
	)
}
