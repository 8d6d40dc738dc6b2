package main

import (
	"os"
	"runtime"

	"github.com/auroralab/aurora/cmd"
	"github.com/urfave/cli"
)

func init() {
	// glfw event handling must run on the main OS thread for the
	// preview command.
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "aurora"
	app.Usage = "bake atmospheric multiple-scattering lookup tables"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	bakeFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 32,
			Usage: "table width (sun zenith cosine axis)",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 32,
			Usage: "table height (radial distance axis)",
		},
		cli.IntFlag{
			Name:  "samples",
			Value: 64,
			Usage: "direction samples per texel (power of two)",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "planet profile document (file path or http(s) url); defaults to an earth-like profile",
		},
		cli.StringFlag{
			Name:  "sun-from",
			Usage: `aim the primary light using the sun position for "lat,lon,rfc3339-time"`,
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 40.0,
			Usage: "exposure for tonemapped output",
		},
		cli.IntFlag{
			Name:  "scale",
			Value: 8,
			Usage: "integer upscale factor for tonemapped output",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist compute backends whose ids contain this value",
		},
		cli.StringFlag{
			Name:  "force-primary",
			Usage: "force a backend whose id contains this value to be the primary",
		},
		cli.StringFlag{
			Name:  "scheduler",
			Value: "feedback",
			Usage: "block scheduler to use (naive or feedback)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "bake",
			Usage: "bake a multiple-scattering table into a compressed archive",
			Description: `
Evaluate the multiple-scattering kernel for every table texel and write the
result to a compressed .alut archive. Table rows are split into blocks which
are scheduled across the available compute backends.`,
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "scattering.alut",
					Usage: "archive filename for the baked table",
				},
				cli.StringFlag{
					Name:  "png",
					Usage: "also export a false-color png of the baked table",
				},
			}, bakeFlags...),
			Action: cmd.Bake,
		},
		{
			Name:  "preview",
			Usage: "bake a table while previewing it in an opengl window",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "optional archive filename for the baked table",
				},
			}, bakeFlags...),
			Action: cmd.Preview,
		},
		{
			Name:  "serve",
			Usage: "bake a table and stream progress to websocket clients",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "listen",
					Value: "127.0.0.1:8080",
					Usage: "address to serve the table viewer on",
				},
				cli.BoolFlag{
					Name:  "watch",
					Usage: "poll the profile document and rebake when it changes",
				},
			}, bakeFlags...),
			Action: cmd.Serve,
		},
		{
			Name:      "inspect",
			Usage:     "print the header and radiance statistics of a table archive",
			ArgsUsage: "table.alut",
			Action:    cmd.Inspect,
		},
		{
			Name:      "export",
			Usage:     "export a table archive to a false-color png",
			ArgsUsage: "table.alut",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "scattering.png",
					Usage: "image filename for the exported table",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 40.0,
					Usage: "exposure for tonemapped output",
				},
				cli.IntFlag{
					Name:  "scale",
					Value: 8,
					Usage: "integer upscale factor for tonemapped output",
				},
			},
			Action: cmd.Export,
		},
		{
			Name:  "sun",
			Usage: "print the sun position for an observer",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "lat",
					Usage: "observer latitude in degrees",
				},
				cli.Float64Flag{
					Name:  "lon",
					Usage: "observer longitude in degrees",
				},
				cli.StringFlag{
					Name:  "time",
					Usage: "rfc3339 time of observation; defaults to now",
				},
			},
			Action: cmd.Sun,
		},
		{
			Name:   "backends",
			Usage:  "list the available compute backends",
			Action: cmd.Backends,
		},
	}

	app.Run(os.Args)
}
