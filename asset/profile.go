package asset

import (
	"encoding/json"
	"fmt"

	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/types"
)

// Medium describes one exponentially distributed participating medium.
// Extinction defaults to the scattering coefficients when omitted.
type Medium struct {
	ScatteringPerKm [3]float32 `json:"scatteringPerKm"`
	ExtinctionPerKm [3]float32 `json:"extinctionPerKm"`
	ScaleHeightKm   float32    `json:"scaleHeightKm"`
}

// LightSpec describes one celestial light in the profile document.
type LightSpec struct {
	Direction [3]float32 `json:"direction"`
	Color     [3]float32 `json:"color"`
}

// Profile is the JSON planet/atmosphere document consumed by the baker.
type Profile struct {
	Name string `json:"name"`

	PlanetRadiusKm        float32    `json:"planetRadiusKm"`
	AtmosphereThicknessKm float32    `json:"atmosphereThicknessKm"`
	GroundAlbedo          [3]float32 `json:"groundAlbedo"`

	Air               Medium  `json:"air"`
	Aerosol           Medium  `json:"aerosol"`
	AerosolAnisotropy float32 `json:"aerosolAnisotropy"`

	Lights []LightSpec `json:"lights"`
}

// Earth-like defaults used when no profile is supplied.
func DefaultProfile() *Profile {
	return &Profile{
		Name:                  "earth",
		PlanetRadiusKm:        6360,
		AtmosphereThicknessKm: 100,
		GroundAlbedo:          [3]float32{0.3, 0.3, 0.3},
		Air: Medium{
			ScatteringPerKm: [3]float32{5.802e-3, 13.558e-3, 33.1e-3},
			ScaleHeightKm:   8.0,
		},
		Aerosol: Medium{
			ScatteringPerKm: [3]float32{3.996e-3, 3.996e-3, 3.996e-3},
			ExtinctionPerKm: [3]float32{4.440e-3, 4.440e-3, 4.440e-3},
			ScaleHeightKm:   1.2,
		},
		AerosolAnisotropy: 0.76,
		Lights: []LightSpec{
			{Direction: [3]float32{0, 1, 0}, Color: [3]float32{1, 1, 1}},
		},
	}
}

// Read and validate a profile document from a resource.
func LoadProfile(res *Resource) (*Profile, error) {
	var profile Profile
	if err := json.NewDecoder(res).Decode(&profile); err != nil {
		return nil, fmt.Errorf("profile %q: %s", res.Path(), err)
	}
	if _, err := profile.Model(); err != nil {
		return nil, fmt.Errorf("profile %q: %s", res.Path(), err)
	}
	return &profile, nil
}

// Build the physical atmosphere model described by the profile.
func (p *Profile) Model() (*atmosphere.Model, error) {
	lights := make([]atmosphere.Light, len(p.Lights))
	for idx, l := range p.Lights {
		lights[idx] = atmosphere.Light{
			Direction: types.XYZ(l.Direction[0], l.Direction[1], l.Direction[2]),
			Color:     types.XYZ(l.Color[0], l.Color[1], l.Color[2]),
		}
	}

	return atmosphere.NewModel(atmosphere.Settings{
		PlanetRadius:       p.PlanetRadiusKm,
		Thickness:          p.AtmosphereThicknessKm,
		GroundAlbedo:       vec3(p.GroundAlbedo),
		AirScattering:      vec3(p.Air.ScatteringPerKm),
		AirExtinction:      extinction(p.Air),
		AirScaleHeight:     p.Air.ScaleHeightKm,
		AerosolScattering:  vec3(p.Aerosol.ScatteringPerKm),
		AerosolExtinction:  extinction(p.Aerosol),
		AerosolScaleHeight: p.Aerosol.ScaleHeightKm,
		Anisotropy:         p.AerosolAnisotropy,
		Lights:             lights,
	})
}

func vec3(v [3]float32) types.Vec3 {
	return types.XYZ(v[0], v[1], v[2])
}

func extinction(m Medium) types.Vec3 {
	if m.ExtinctionPerKm == [3]float32{} {
		return vec3(m.ScatteringPerKm)
	}
	return vec3(m.ExtinctionPerKm)
}
