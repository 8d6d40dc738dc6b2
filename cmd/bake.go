package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/auroralab/aurora/asset"
	"github.com/auroralab/aurora/baker"
	"github.com/auroralab/aurora/compute"
	"github.com/auroralab/aurora/lut"
	"github.com/auroralab/aurora/scatter"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Bake the multiple-scattering table and write it to a compressed archive.
func Bake(ctx *cli.Context) error {
	setupLogging(ctx)

	kernel, profile, err := setupKernel(ctx)
	if err != nil {
		return err
	}
	scheduler, err := setupScheduler(ctx)
	if err != nil {
		return err
	}

	b, err := baker.NewDefault(kernel, scheduler, bakerOptions(ctx))
	if err != nil {
		return err
	}
	defer b.Close()

	bakeCtx, cancel := interruptibleContext()
	defer cancel()

	params := kernel.Params()
	logger.Noticef("baking %dx%d table with %d direction samples (profile %q)", params.Width, params.Height, kernel.Samples(), profile.Name)

	table, err := b.Bake(bakeCtx)
	if err != nil {
		return err
	}

	stats := b.Stats()
	displayBakeStats(stats)

	header := lut.Header{
		Samples:  uint32(kernel.Samples()),
		Profile:  profile.Name,
		BakedAt:  time.Now(),
		BakeTime: stats.BakeTime,
	}
	if err = lut.Write(ctx.String("out"), table, header); err != nil {
		return err
	}

	if pngFile := ctx.String("png"); pngFile != "" {
		return table.ExportPNG(pngFile, float32(ctx.Float64("exposure")), ctx.Int("scale"))
	}
	return nil
}

// Assemble the scattering kernel described by the common bake flags.
func setupKernel(ctx *cli.Context) (*scatter.Kernel, *asset.Profile, error) {
	profile := asset.DefaultProfile()
	if profilePath := ctx.String("profile"); profilePath != "" {
		res, err := asset.NewResource(profilePath)
		if err != nil {
			return nil, nil, err
		}
		defer res.Close()

		if profile, err = asset.LoadProfile(res); err != nil {
			return nil, nil, err
		}
	}

	if sunFrom := ctx.String("sun-from"); sunFrom != "" {
		if err := aimSun(profile, sunFrom); err != nil {
			return nil, nil, err
		}
	}

	model, err := profile.Model()
	if err != nil {
		return nil, nil, err
	}

	kernel, err := scatter.NewKernel(model, scatter.Params{
		Width:        ctx.Int("width"),
		Height:       ctx.Int("height"),
		PlanetRadius: profile.PlanetRadiusKm,
		Thickness:    profile.AtmosphereThicknessKm,
	}, ctx.Int("samples"))
	if err != nil {
		return nil, nil, err
	}

	return kernel, profile, nil
}

// Re-aim the profile's primary light using the sun position for an
// observer described as "lat,lon,rfc3339-time".
func aimSun(profile *asset.Profile, sunFrom string) error {
	parts := strings.SplitN(sunFrom, ",", 3)
	if len(parts) != 3 {
		return errors.New(`sun-from: expected "lat,lon,rfc3339-time"`)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("sun-from: invalid latitude: %s", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("sun-from: invalid longitude: %s", err)
	}
	when, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2]))
	if err != nil {
		return fmt.Errorf("sun-from: invalid time: %s", err)
	}

	dir := asset.SunDirection(when, lat, lon)
	if len(profile.Lights) == 0 {
		profile.Lights = append(profile.Lights, asset.LightSpec{Color: [3]float32{1, 1, 1}})
	}
	profile.Lights[0].Direction = [3]float32{dir[0], dir[1], dir[2]}

	logger.Noticef("aimed primary light at the sun for lat %.4f lon %.4f at %s", lat, lon, when.Format(time.RFC3339))
	return nil
}

func setupScheduler(ctx *cli.Context) (compute.BlockScheduler, error) {
	switch name := ctx.String("scheduler"); name {
	case "naive":
		return compute.NaiveScheduler(), nil
	case "", "feedback":
		return compute.FeedbackScheduler(), nil
	default:
		return nil, fmt.Errorf("unknown block scheduler %q", name)
	}
}

func bakerOptions(ctx *cli.Context) baker.Options {
	return baker.Options{
		Exposure:            float32(ctx.Float64("exposure")),
		DisplayScale:        uint32(ctx.Int("scale")),
		BlackListedBackends: ctx.StringSlice("blacklist"),
		ForcePrimaryBackend: ctx.String("force-primary"),
	}
}

// A context that is cancelled when the process receives an interrupt.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func displayBakeStats(stats baker.BakeStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Backend", "Primary", "Block height", "% of table", "Bake time"})
	for _, stat := range stats.Backends {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.TablePercent),
			fmt.Sprintf("%s", stat.BakeTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.BakeTime)})

	table.Render()
	logger.Noticef("bake statistics\n%s", buf.String())
}
