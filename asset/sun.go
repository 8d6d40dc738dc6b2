package asset

import (
	"math"
	"time"

	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/types"
	"github.com/sixdouglas/suncalc"
)

// SunPosition reports the sun azimuth and altitude in radians for an
// observer at the given coordinates. suncalc measures azimuth from south
// towards west; altitude is relative to the horizon.
func SunPosition(when time.Time, latitude, longitude float64) (azimuth, altitude float64) {
	pos := suncalc.GetPosition(when, latitude, longitude)
	return pos.Azimuth, pos.Altitude
}

// SunDirection returns a unit vector pointing at the sun in the local
// frame used by the baker: +Y is the zenith, +X east, +Z south.
func SunDirection(when time.Time, latitude, longitude float64) types.Vec3 {
	az, alt := SunPosition(when, latitude, longitude)
	cosAlt := math.Cos(alt)
	return types.XYZ(
		float32(-math.Sin(az)*cosAlt),
		float32(math.Sin(alt)),
		float32(math.Cos(az)*cosAlt),
	)
}

// SunLight builds a celestial light aimed at the sun as seen from the
// given coordinates at the given time.
func SunLight(when time.Time, latitude, longitude float64, color types.Vec3) atmosphere.Light {
	return atmosphere.Light{
		Direction: SunDirection(when, latitude, longitude),
		Color:     color,
	}
}
