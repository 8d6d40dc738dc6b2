package cmd

import (
	"errors"

	"github.com/auroralab/aurora/lut"
	"github.com/urfave/cli"
)

// Export a baked table archive to a false-color png.
func Export(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing table archive argument")
	}

	table, _, err := lut.Read(ctx.Args().First())
	if err != nil {
		return err
	}

	return table.ExportPNG(ctx.String("out"), float32(ctx.Float64("exposure")), ctx.Int("scale"))
}
