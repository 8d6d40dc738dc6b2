package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/auroralab/aurora/lut"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the header and radiance statistics of a baked table archive.
func Inspect(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing table archive argument")
	}
	tableFile := ctx.Args().First()

	table, header, err := lut.Read(tableFile)
	if err != nil {
		return err
	}

	minRadiance, maxRadiance, meanRadiance := radianceStats(table)

	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"Field", "Value"})
	tw.Append([]string{"Profile", header.Profile})
	tw.Append([]string{"Dimensions", fmt.Sprintf("%dx%d", header.Width, header.Height)})
	tw.Append([]string{"Samples", fmt.Sprintf("%d", header.Samples)})
	tw.Append([]string{"Baked at", header.BakedAt.Format(time.RFC3339)})
	tw.Append([]string{"Bake time", header.BakeTime.String()})
	tw.Append([]string{"Radiance min", fmt.Sprintf("%g", minRadiance)})
	tw.Append([]string{"Radiance max", fmt.Sprintf("%g", maxRadiance)})
	tw.Append([]string{"Radiance mean", fmt.Sprintf("%g", meanRadiance)})
	tw.Render()

	logger.Noticef("table %s\n%s", tableFile, buf.String())
	return nil
}

// Channel-wide radiance extrema and mean over all table texels.
func radianceStats(table *lut.Table) (minRadiance, maxRadiance, meanRadiance float32) {
	if len(table.Texels) == 0 {
		return 0, 0, 0
	}

	minRadiance = table.Texels[0][0]
	maxRadiance = table.Texels[0][0]

	var sum float64
	for _, texel := range table.Texels {
		for c := 0; c < 3; c++ {
			v := texel[c]
			if v < minRadiance {
				minRadiance = v
			}
			if v > maxRadiance {
				maxRadiance = v
			}
			sum += float64(v)
		}
	}
	meanRadiance = float32(sum / float64(len(table.Texels)*3))
	return minRadiance, maxRadiance, meanRadiance
}
