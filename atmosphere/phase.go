package atmosphere

import "math"

// Phase functions integrate to one over the sphere of directions.

// Isotropic phase function value.
func IsotropicPhase() float32 {
	return 1 / (4 * math.Pi)
}

// Rayleigh phase function for air molecules.
func AirPhase(cosTheta float32) float32 {
	return (3 / (16 * math.Pi)) * (1 + cosTheta*cosTheta)
}

// Cornette-Shanks phase function for aerosols, using the model anisotropy.
func (m *Model) AerosolPhase(cosTheta float32) float32 {
	g := m.anisotropy
	d := 1 + g*g - 2*g*cosTheta
	return m.csConstant * (1 + cosTheta*cosTheta) / (d * sqrtf(d))
}
