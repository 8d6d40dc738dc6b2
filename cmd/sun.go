package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/auroralab/aurora/asset"
	"github.com/urfave/cli"
)

// Print the sun position for an observer at the given coordinates. The
// reported direction vector uses the baker's local frame (+Y zenith, +X
// east, +Z south) and can be pasted into a profile light.
func Sun(ctx *cli.Context) error {
	setupLogging(ctx)

	when := time.Now()
	if flagTime := ctx.String("time"); flagTime != "" {
		var err error
		if when, err = time.Parse(time.RFC3339, flagTime); err != nil {
			return fmt.Errorf("invalid time: %s", err)
		}
	}

	lat := ctx.Float64("lat")
	lon := ctx.Float64("lon")

	azimuth, altitude := asset.SunPosition(when, lat, lon)
	dir := asset.SunDirection(when, lat, lon)

	logger.Noticef(
		"sun position for lat %.4f lon %.4f at %s:\n  azimuth   %7.2f deg (from south, towards west)\n  altitude  %7.2f deg\n  direction [%.4f, %.4f, %.4f]",
		lat, lon, when.Format(time.RFC3339),
		azimuth*180/math.Pi,
		altitude*180/math.Pi,
		dir[0], dir[1], dir[2],
	)
	return nil
}
