package cmd

import (
	"time"

	"github.com/auroralab/aurora/baker"
	"github.com/auroralab/aurora/lut"
	"github.com/urfave/cli"
)

// Bake the multiple-scattering table while previewing it in an opengl
// window. Up/down keys adjust the preview exposure and ESC closes the
// window; an archive is only written when the out flag is set.
func Preview(ctx *cli.Context) error {
	setupLogging(ctx)

	kernel, profile, err := setupKernel(ctx)
	if err != nil {
		return err
	}
	scheduler, err := setupScheduler(ctx)
	if err != nil {
		return err
	}

	b, err := baker.NewInteractive(kernel, scheduler, bakerOptions(ctx))
	if err != nil {
		return err
	}
	defer b.Close()

	bakeCtx, cancel := interruptibleContext()
	defer cancel()

	table, err := b.Bake(bakeCtx)
	if err != nil {
		return err
	}

	stats := b.Stats()
	displayBakeStats(stats)

	if out := ctx.String("out"); out != "" {
		header := lut.Header{
			Samples:  uint32(kernel.Samples()),
			Profile:  profile.Name,
			BakedAt:  time.Now(),
			BakeTime: stats.BakeTime,
		}
		return lut.Write(out, table, header)
	}
	return nil
}
