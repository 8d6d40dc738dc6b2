package scatter

import (
	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/types"
)

// Number of ray-march sub-intervals per ray.
const marchSteps = 16

// Per-channel step optical thickness below which the closed-form step
// integral switches to its analytic limit.
const thinStepThreshold = 1e-4

// stepPoint carries the mid-interval quantities handed to a source term.
type stepPoint struct {
	point   types.Vec3
	radius  float32
	height  float32
	viewDir types.Vec3

	// Running transmittance times the closed-form step integral
	// (1 - stepTransmittance) / extinction, per channel.
	weight types.Vec3

	airScattering     types.Vec3
	aerosolScattering types.Vec3
}

// A sourceTerm produces the in-scattered radiance and scattering-density
// contributions of one march step. Implementations select between direct
// light evaluation and the bootstrap seed for the multi-scatter estimate,
// keeping the marching loop itself shared.
type sourceTerm func(s *stepPoint) (radiance, density types.Vec3)

type marchResult struct {
	radiance      types.Vec3
	density       types.Vec3
	transmittance types.Vec3
}

// march integrates in-scattered radiance and transmittance over [0, tMax].
// The segment splits into marchSteps sub-intervals whose boundaries grow
// quadratically, clustering steps near the ray origin. Zero-length
// segments contribute nothing and leave the transmittance at one.
func (k *Kernel) march(origin, dir types.Vec3, tMax float32, source sourceTerm) marchResult {
	res := marchResult{transmittance: types.XYZ(1, 1, 1)}
	if tMax <= 0 {
		return res
	}

	t0 := float32(0)
	for i := 1; i <= marchSteps; i++ {
		f := float32(i) / marchSteps
		t1 := tMax * f * f
		dt := t1 - t0

		mid := origin.Add(dir.Mul((t0 + t1) * 0.5))
		radius := mid.Len()
		height := radius - k.model.PlanetRadius
		if height < 0 {
			height = 0
		}

		extinction := k.model.Extinction(height)
		stepTrans := atmosphere.TransmittanceFromOpticalDepth(extinction.Mul(dt))

		s := stepPoint{
			point:             mid,
			radius:            radius,
			height:            height,
			viewDir:           dir,
			airScattering:     k.model.AirScattering(height),
			aerosolScattering: k.model.AerosolScattering(height),
		}
		for c := 0; c < 3; c++ {
			// (1 - exp(-x))/extinction degenerates to 0/0 as the step
			// thins out; switch to its limit before that happens.
			if extinction[c]*dt < thinStepThreshold {
				s.weight[c] = res.transmittance[c] * dt
			} else {
				s.weight[c] = res.transmittance[c] * (1 - stepTrans[c]) / extinction[c]
			}
		}

		radiance, density := source(&s)
		res.radiance = res.radiance.Add(radiance)
		res.density = res.density.Add(density)
		res.transmittance = res.transmittance.MulVec(stepTrans)

		t0 = t1
	}
	return res
}

// lightSource evaluates the configured celestial lights with their real
// phase functions: the direct integration mode.
func (k *Kernel) lightSource(lights []atmosphere.Light) sourceTerm {
	return func(s *stepPoint) (types.Vec3, types.Vec3) {
		var sum types.Vec3
		up := s.point.Mul(1 / s.radius)

		for _, l := range lights {
			atten := k.model.SunAttenuation(l.Direction.Dot(up), s.radius)
			if atten == (types.Vec3{}) {
				continue
			}
			cosTheta := l.Direction.Dot(s.viewDir)
			scat := s.airScattering.Mul(atmosphere.AirPhase(cosTheta)).
				Add(s.aerosolScattering.Mul(k.model.AerosolPhase(cosTheta)))
			sum = sum.Add(atten.MulVec(scat).MulVec(l.Color))
		}
		return sum.MulVec(s.weight), types.Vec3{}
	}
}

// bootstrapSource wraps the direct mode and additionally accumulates the
// scattering-density seed: isotropically phased unit radiance arriving
// from every direction, with no sun attenuation.
func (k *Kernel) bootstrapSource(lights []atmosphere.Light) sourceTerm {
	direct := k.lightSource(lights)
	iso := atmosphere.IsotropicPhase()

	return func(s *stepPoint) (types.Vec3, types.Vec3) {
		radiance, _ := direct(s)
		density := s.airScattering.Add(s.aerosolScattering).Mul(iso).MulVec(s.weight)
		return radiance, density
	}
}
