package cmd

import (
	"os"
	"time"

	"github.com/auroralab/aurora/baker"
	"github.com/auroralab/aurora/web"
	"github.com/urfave/cli"
)

// How often a watched profile document is polled for changes.
const watchInterval = 2 * time.Second

// Bake the multiple-scattering table and stream progress events to
// websocket clients. With the watch flag set, the profile document is
// polled and the table is rebaked whenever it changes.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	kernel, profile, err := setupKernel(ctx)
	if err != nil {
		return err
	}
	scheduler, err := setupScheduler(ctx)
	if err != nil {
		return err
	}

	progressChan := make(chan baker.Progress, 64)
	defer close(progressChan)

	opts := bakerOptions(ctx)
	opts.Progress = progressChan

	b, err := baker.NewDefault(kernel, scheduler, opts)
	if err != nil {
		return err
	}
	defer b.Close()

	params := kernel.Params()
	config := web.NewConfigEvent(params.Width, params.Height, kernel.Samples(), profile.Name)
	server := web.NewServer(ctx.String("listen"), config, float32(ctx.Float64("exposure")), ctx.Int("scale"))
	defer server.Close()

	go func() {
		for event := range progressChan {
			server.BroadcastProgress(event.Rows, event.Total)
		}
	}()

	serveErrChan := make(chan error, 1)
	go func() {
		serveErrChan <- server.Serve()
	}()

	bakeCtx, cancel := interruptibleContext()
	defer cancel()

	profilePath := ctx.String("profile")
	watch := ctx.Bool("watch") && profilePath != ""
	if ctx.Bool("watch") && profilePath == "" {
		logger.Warningf("watch requested without a profile document; baking once")
	}

	var lastModTime time.Time
	if watch {
		if info, err := os.Stat(profilePath); err == nil {
			lastModTime = info.ModTime()
		}
	}

	for {
		table, err := b.Bake(bakeCtx)
		if err == baker.ErrInterrupted {
			return nil
		}
		if err != nil {
			return err
		}

		stats := b.Stats()
		server.SetSnapshot(table)
		server.BroadcastDone(stats.BakeTime)
		displayBakeStats(stats)

		if !watch {
			// Keep serving the baked table until interrupted.
			select {
			case err = <-serveErrChan:
				return err
			case <-bakeCtx.Done():
				return nil
			}
		}

		// Poll the profile document until it changes, then queue the
		// rebuilt kernel on the backends and run another pass.
		for queued := false; !queued; {
			select {
			case err = <-serveErrChan:
				return err
			case <-bakeCtx.Done():
				return nil
			case <-time.After(watchInterval):
			}

			info, err := os.Stat(profilePath)
			if err != nil || !info.ModTime().After(lastModTime) {
				continue
			}
			lastModTime = info.ModTime()

			kernel, _, err := setupKernel(ctx)
			if err != nil {
				logger.Warningf("ignoring profile change: %s", err)
				continue
			}

			logger.Noticef("profile %s changed; rebaking", profilePath)
			b.UpdateKernel(kernel)
			queued = true
		}
	}
}
