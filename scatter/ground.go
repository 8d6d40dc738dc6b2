package scatter

import (
	"math"

	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/types"
)

// ground returns the diffuse radiance reflected at a surface point: a
// Lambertian albedo/pi lobe lit by every above-horizon light through its
// atmospheric transmittance. Lights below the local horizon contribute
// nothing. The caller is responsible for attenuating the result by the
// transmittance accumulated between the ray origin and the surface.
func (k *Kernel) ground(point types.Vec3, lights []atmosphere.Light) types.Vec3 {
	radius := point.Len()
	up := point.Mul(1 / radius)
	brdf := k.model.GroundAlbedo.Mul(1 / math.Pi)

	var sum types.Vec3
	for _, l := range lights {
		cosZenith := l.Direction.Dot(up)
		if cosZenith <= 0 {
			continue
		}
		atten := k.model.SunAttenuation(cosZenith, radius)
		sum = sum.Add(atten.MulVec(l.Color).Mul(cosZenith))
	}
	return brdf.MulVec(sum)
}
