package cmd

import (
	"bytes"
	"fmt"

	"github.com/auroralab/aurora/baker"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the compute backends available for baking.
func Backends(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"Backend", "Speed estimate"})
	for _, backend := range baker.Backends() {
		tw.Append([]string{backend.Id(), fmt.Sprintf("%3.1f", backend.SpeedEstimate())})
		backend.Close()
	}
	tw.Render()

	logger.Noticef("available compute backends\n%s", buf.String())
	return nil
}
