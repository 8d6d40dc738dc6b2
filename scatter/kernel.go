// Package scatter implements the multiple-scattering estimation kernel:
// it integrates in-scattered radiance and transmittance along rays through
// a planetary atmosphere, gathers the result over a deterministic set of
// sphere directions and extrapolates the infinite scattering series from a
// single bounce.
//
// A texel evaluation runs in four strict phases: parameterize, per-lane
// sample+integrate, reduce, closure+write. The kernel owns phases 1, 2 and
// 4; reduction across cooperating lanes belongs to the compute backends.
package scatter

import (
	"errors"
	"math"

	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/types"
)

// Kernel evaluates the infinite multiple-scattering estimate for the LUT
// texels of one atmosphere model. Kernels are immutable and safe for
// concurrent use.
type Kernel struct {
	model   *atmosphere.Model
	params  Params
	samples int
}

// Create a kernel for the given model and table parameterization, sampling
// the sphere with the given number of directions per texel.
func NewKernel(model *atmosphere.Model, params Params, samples int) (*Kernel, error) {
	if model == nil {
		return nil, errors.New("scatter: nil atmosphere model")
	}
	if params.Width < 1 || params.Height < 1 {
		return nil, errors.New("scatter: table dimensions must be >= 1")
	}
	if params.PlanetRadius <= 0 || params.Thickness <= 0 {
		return nil, errors.New("scatter: parameterization requires a positive planet radius and thickness")
	}
	if samples < 1 {
		return nil, errors.New("scatter: sample count must be >= 1")
	}
	return &Kernel{
		model:   model,
		params:  params,
		samples: samples,
	}, nil
}

// Number of sample directions per texel.
func (k *Kernel) Samples() int {
	return k.samples
}

// The table parameterization baked into this kernel.
func (k *Kernel) Params() Params {
	return k.params
}

// Eval carries the per-texel state shared by every lane: the physical
// parameter pair and the light rig rotated so the primary light matches
// the parameterized sun direction.
type Eval struct {
	CosZenith float32
	Radius    float32

	kernel *Kernel
	origin types.Vec3
	lights []atmosphere.Light
	source sourceTerm
}

// Parameterize starts the evaluation of texel (x, y).
func (k *Kernel) Parameterize(x, y int) *Eval {
	cosZenith, radialDistance := k.params.Parameters(x, y)
	return k.ParameterizeAt(cosZenith, radialDistance)
}

// ParameterizeAt starts an evaluation at an explicit parameter pair.
func (k *Kernel) ParameterizeAt(cosZenith, radialDistance float32) *Eval {
	e := &Eval{
		CosZenith: cosZenith,
		Radius:    radialDistance,
		kernel:    k,
		origin:    types.XYZ(0, radialDistance, 0),
		lights:    k.aimLights(cosZenith),
	}
	e.source = k.bootstrapSource(e.lights)
	return e
}

// Rotate the configured light rig so the primary light takes the
// parameterized direction; secondary lights keep their relative geometry.
func (k *Kernel) aimLights(cosZenith float32) []atmosphere.Light {
	lights := k.model.Lights
	if len(lights) == 0 {
		return nil
	}

	sinZenith := float32(math.Sqrt(float64(clamp01(1 - cosZenith*cosZenith))))
	aim := types.XYZ(sinZenith, cosZenith, 0)
	rot := types.QuatBetweenVectors(lights[0].Direction, aim)

	aimed := make([]atmosphere.Light, len(lights))
	aimed[0] = atmosphere.Light{Direction: aim, Color: lights[0].Color}
	for i := 1; i < len(lights); i++ {
		aimed[i] = atmosphere.Light{
			Direction: rot.Rotate(lights[i].Direction),
			Color:     lights[i].Color,
		}
	}
	return aimed
}

// Sample integrates lane i's direction and returns its solid-angle
// weighted radiance and scattering-density contributions. Lanes own their
// sample exclusively until reduction.
func (e *Eval) Sample(i int) (radiance, density types.Vec3) {
	k := e.kernel
	dir := Direction(i, k.samples)

	_, exit, ok := k.model.AtmosphereIntersection(e.origin, dir)
	if !ok {
		return types.Vec3{}, types.Vec3{}
	}
	tMax := exit

	groundDist, hitGround := k.model.GroundIntersection(dir[1], e.Radius)
	if hitGround {
		tMax = groundDist
	}

	res := k.march(e.origin, dir, tMax, e.source)
	if hitGround {
		point := e.origin.Add(dir.Mul(groundDist))
		res.radiance = res.radiance.Add(res.transmittance.MulVec(k.ground(point, e.lights)))
	}

	dOmega := float32(4 * math.Pi / float64(k.samples))
	return res.radiance.Mul(dOmega), res.density.Mul(dOmega)
}

// Finalize turns the reduced lane sums into the final texel value and is
// called by exactly one lane per texel. The gathered radiance picks up the
// isotropic phase of the next scattering event here; the density sum was
// already phased inside the march, leaving it the plain per-bounce energy
// transfer ratio the closure expects.
func (e *Eval) Finalize(sumRadiance, sumDensity types.Vec3) types.Vec3 {
	return Closure(sumRadiance.Mul(atmosphere.IsotropicPhase()), sumDensity)
}

// Evaluate runs a complete texel evaluation on the calling goroutine,
// folding lane samples in index order. Cooperating lane groups must agree
// with this result up to floating-point summation order.
func (k *Kernel) Evaluate(cosZenith, radialDistance float32) types.Vec3 {
	e := k.ParameterizeAt(cosZenith, radialDistance)

	var sumRadiance, sumDensity types.Vec3
	for i := 0; i < k.samples; i++ {
		radiance, density := e.Sample(i)
		sumRadiance = sumRadiance.Add(radiance)
		sumDensity = sumDensity.Add(density)
	}
	return e.Finalize(sumRadiance, sumDensity)
}
