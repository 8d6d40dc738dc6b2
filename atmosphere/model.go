package atmosphere

import (
	"errors"
	"math"

	"github.com/auroralab/aurora/types"
)

// All distances are expressed in kilometers and all coefficients in km^-1.
// Altitudes are measured from the planet surface, radial distances from the
// planet center.

// A celestial light source illuminating the atmosphere.
type Light struct {
	// Unit vector pointing towards the light.
	Direction types.Vec3

	// Linear RGB intensity.
	Color types.Vec3
}

// Settings describe a planetary atmosphere with two exponentially
// distributed participating media (air molecules and aerosols).
type Settings struct {
	PlanetRadius float32
	Thickness    float32
	GroundAlbedo types.Vec3

	AirScattering  types.Vec3
	AirExtinction  types.Vec3
	AirScaleHeight float32

	AerosolScattering  types.Vec3
	AerosolExtinction  types.Vec3
	AerosolScaleHeight float32

	// Aerosol phase anisotropy in (-1, 1).
	Anisotropy float32

	Lights []Light
}

// Model provides the physical atmosphere quantities consumed by the
// scattering kernel. Instances are immutable after construction.
type Model struct {
	PlanetRadius float32
	TopRadius    float32
	Thickness    float32
	GroundAlbedo types.Vec3
	Lights       []Light

	airScattering  types.Vec3
	airExtinction  types.Vec3
	airScale       float32
	airInvScale    float32
	aeroScattering types.Vec3
	aeroExtinction types.Vec3
	aeroScale      float32
	aeroInvScale   float32

	anisotropy float32
	csConstant float32
}

// Create a model from a settings block, validating physical invariants.
func NewModel(s Settings) (*Model, error) {
	if s.PlanetRadius <= 0 {
		return nil, errors.New("atmosphere: planet radius must be > 0")
	}
	if s.Thickness <= 0 {
		return nil, errors.New("atmosphere: atmosphere thickness must be > 0")
	}
	for i := 0; i < 3; i++ {
		if s.GroundAlbedo[i] < 0 || s.GroundAlbedo[i] > 1 {
			return nil, errors.New("atmosphere: ground albedo components must be in [0, 1]")
		}
	}
	if s.AirScaleHeight <= 0 || s.AerosolScaleHeight <= 0 {
		return nil, errors.New("atmosphere: scale heights must be > 0")
	}
	if anis := s.Anisotropy; anis <= -1 || anis >= 1 {
		return nil, errors.New("atmosphere: aerosol anisotropy must be in (-1, 1)")
	}
	for _, coef := range []types.Vec3{s.AirScattering, s.AirExtinction, s.AerosolScattering, s.AerosolExtinction} {
		for i := 0; i < 3; i++ {
			if coef[i] < 0 {
				return nil, errors.New("atmosphere: scattering and extinction coefficients must be >= 0")
			}
		}
	}

	lights := make([]Light, len(s.Lights))
	for idx, l := range s.Lights {
		if l.Direction.Len() < 1e-6 {
			return nil, errors.New("atmosphere: light direction must be non-zero")
		}
		for i := 0; i < 3; i++ {
			if l.Color[i] < 0 {
				return nil, errors.New("atmosphere: light color components must be >= 0")
			}
		}
		lights[idx] = Light{
			Direction: l.Direction.Normalize(),
			Color:     l.Color,
		}
	}

	g := s.Anisotropy
	return &Model{
		PlanetRadius:   s.PlanetRadius,
		TopRadius:      s.PlanetRadius + s.Thickness,
		Thickness:      s.Thickness,
		GroundAlbedo:   s.GroundAlbedo,
		Lights:         lights,
		airScattering:  s.AirScattering,
		airExtinction:  s.AirExtinction,
		airScale:       s.AirScaleHeight,
		airInvScale:    1 / s.AirScaleHeight,
		aeroScattering: s.AerosolScattering,
		aeroExtinction: s.AerosolExtinction,
		aeroScale:      s.AerosolScaleHeight,
		aeroInvScale:   1 / s.AerosolScaleHeight,
		anisotropy:     g,
		csConstant:     (3 / (8 * math.Pi)) * (1 - g*g) / (2 + g*g),
	}, nil
}

// Relative air density at the given altitude.
func (m *Model) AirDensity(height float32) float32 {
	return expf(-height * m.airInvScale)
}

// Relative aerosol density at the given altitude.
func (m *Model) AerosolDensity(height float32) float32 {
	return expf(-height * m.aeroInvScale)
}

// Air scattering coefficients at the given altitude.
func (m *Model) AirScattering(height float32) types.Vec3 {
	return m.airScattering.Mul(m.AirDensity(height))
}

// Aerosol scattering coefficients at the given altitude.
func (m *Model) AerosolScattering(height float32) types.Vec3 {
	return m.aeroScattering.Mul(m.AerosolDensity(height))
}

// Combined air and aerosol extinction coefficients at the given altitude.
func (m *Model) Extinction(height float32) types.Vec3 {
	return m.airExtinction.Mul(m.AirDensity(height)).Add(m.aeroExtinction.Mul(m.AerosolDensity(height)))
}

// Estimate the optical depth along a ray leaving the point at radial
// distance r with direction cosine cosZenith relative to the local zenith.
// Rays flagged as above the horizon exit through the top of the atmosphere;
// the rest terminate on the planet surface. Uses rescaled Chapman function
// approximations instead of numerical quadrature.
func (m *Model) OpticalDepth(r, cosZenith float32, aboveHorizon bool) types.Vec3 {
	airZ := r * m.airInvScale
	airZP := m.PlanetRadius * m.airInvScale
	aeroZ := r * m.aeroInvScale
	aeroZP := m.PlanetRadius * m.aeroInvScale

	absCos := cosZenith
	if absCos < 0 {
		absCos = -absCos
	}
	sinZenith := sqrtf(clamp01(1 - cosZenith*cosZenith))

	chAir := chapmanUpper(airZ, absCos) * expf(airZP-airZ)
	chAero := chapmanUpper(aeroZ, absCos) * expf(aeroZP-aeroZ)

	if !aboveHorizon {
		// The ray continues through the lower hemisphere and hits the
		// ground: integrate the full grazing column and subtract the
		// part behind the origin.
		sinGamma := (r / m.PlanetRadius) * sinZenith
		cosGamma := sqrtf(clamp01(1 - sinGamma*sinGamma))

		chAir = chapmanUpper(airZP, cosGamma) - chAir
		chAero = chapmanUpper(aeroZP, cosGamma) - chAero
	} else if cosZenith < 0 {
		// Above the horizon but pointing below the local horizontal:
		// Ch(z, theta) = 2*exp(z - z0)*Ch(z0, pi/2) - Ch(z, pi - theta)
		// where z0 marks the lowest point of the ray.
		airZ0 := airZ * sinZenith
		aeroZ0 := aeroZ * sinZenith

		chAir = 2*chapmanHorizontal(airZ0)*expf(airZP-airZ0) - chAir
		chAero = 2*chapmanHorizontal(aeroZ0)*expf(aeroZP-aeroZ0) - chAero
	}

	airDepth := chAir * m.airScale
	aeroDepth := chAero * m.aeroScale

	return m.airExtinction.Mul(airDepth).Add(m.aeroExtinction.Mul(aeroDepth))
}

// Transmittance along the path described by an optical depth.
func TransmittanceFromOpticalDepth(depth types.Vec3) types.Vec3 {
	return types.XYZ(expf(-depth[0]), expf(-depth[1]), expf(-depth[2]))
}

// Fraction of a light's radiance that survives the trip through the
// atmosphere to the point at radial distance r, with the light at the given
// zenith cosine. Lights below the local horizon are fully occluded by the
// planet.
func (m *Model) SunAttenuation(cosZenith, r float32) types.Vec3 {
	if cosZenith < m.HorizonCosine(r) {
		return types.Vec3{}
	}
	return TransmittanceFromOpticalDepth(m.OpticalDepth(r, cosZenith, true))
}

// Upper-hemisphere Chapman grazing incidence approximation, rescaled by the
// caller with exp(z0 - z).
func chapmanUpper(z, absCosZenith float32) float32 {
	c := absCosZenith
	n := 0.761643 * ((1 + 2*z) - (c * c * z))
	d := c*z + sqrtf(z*(1.47721+0.273828*(c*c*z)))
	return 0.5*c + (n / d)
}

// Chapman approximation for a ray grazing the horizontal.
func chapmanHorizontal(z float32) float32 {
	r := 1 / sqrtf(z)
	s := z * r
	return 0.626657 * (r + 2*s)
}

func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
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
