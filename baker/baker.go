// Package baker orchestrates table bakes. It splits the lookup table into
// row blocks, schedules them across the attached compute backends and
// collects per-backend statistics for each pass.
package baker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/auroralab/aurora/compute"
	"github.com/auroralab/aurora/compute/cpu"
	"github.com/auroralab/aurora/log"
	"github.com/auroralab/aurora/lut"
	"github.com/auroralab/aurora/scatter"
)

var logger = log.New("baker")

type Baker interface {
	// Bake the lookup table by scheduling row blocks across the attached
	// backends. Each call runs one full pass over the table.
	Bake(ctx context.Context) (*lut.Table, error)

	// Queue a new kernel on the attached backends. The change is
	// committed before the next pass begins.
	UpdateKernel(kernel *scatter.Kernel)

	// Shutdown baker and any attached backend.
	Close()

	// Get bake statistics.
	Stats() BakeStats
}

// Backends returns the compute backends a baker can drive, one cpu backend
// per reduction strategy.
func Backends() []compute.Backend {
	return []compute.Backend{
		cpu.NewBackend("cpu-collective", cpu.Collective),
		cpu.NewBackend("cpu-tree", cpu.Tree),
	}
}

type defaultBaker struct {
	sync.Mutex

	options   Options
	scheduler compute.BlockScheduler

	// The attached backends. The first entry is the primary backend.
	backends []compute.Backend

	// The kernel and output table for the current pass.
	kernel *scatter.Kernel
	table  *lut.Table

	// Completed pass count. Re-bakes swap in a fresh table so callers
	// holding a previously returned table never observe new rows
	// landing in it.
	passCount uint32

	stats BakeStats
}

// Create a new baker using the specified block scheduler and scattering
// kernel. The output table dimensions are fixed by the kernel
// parameterization.
func NewDefault(kernel *scatter.Kernel, scheduler compute.BlockScheduler, opts Options) (Baker, error) {
	opts = opts.withDefaults()

	if kernel == nil {
		return nil, ErrKernelNotDefined
	}

	backends, err := selectBackends(opts)
	if err != nil {
		return nil, err
	}

	params := kernel.Params()
	if params.Height < len(backends) {
		return nil, ErrTableTooSmall
	}

	table, err := lut.NewTable(params.Width, params.Height)
	if err != nil {
		return nil, err
	}

	for idx, backend := range backends {
		if err = backend.Setup(kernel, table); err != nil {
			for _, ready := range backends[:idx] {
				ready.Close()
			}
			return nil, fmt.Errorf("baker: setting up backend %s: %s", backend.Id(), err.Error())
		}
	}

	return &defaultBaker{
		options:   opts,
		scheduler: scheduler,
		backends:  backends,
		kernel:    kernel,
		table:     table,
	}, nil
}

// Build the backend pool, dropping black-listed backends and moving a
// forced primary to the head of the pool.
func selectBackends(opts Options) ([]compute.Backend, error) {
	var backends []compute.Backend
	for _, backend := range Backends() {
		if blackListed(backend.Id(), opts.BlackListedBackends) {
			logger.Infof("skipping black-listed backend %s", backend.Id())
			continue
		}
		backends = append(backends, backend)
	}

	if opts.ForcePrimaryBackend != "" {
		primary := -1
		for idx, backend := range backends {
			if strings.Contains(backend.Id(), opts.ForcePrimaryBackend) {
				primary = idx
				break
			}
		}
		if primary == -1 {
			return nil, fmt.Errorf("baker: no backend id matches forced primary %q", opts.ForcePrimaryBackend)
		}
		backends[0], backends[primary] = backends[primary], backends[0]
	}

	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return backends, nil
}

func blackListed(id string, blackList []string) bool {
	for _, entry := range blackList {
		if entry != "" && strings.Contains(id, entry) {
			return true
		}
	}
	return false
}

// Bake the lookup table. Each call runs one full scheduler pass over the
// table rows and blocks until every row is baked, an error is reported or
// the context is cancelled.
func (b *defaultBaker) Bake(ctx context.Context) (*lut.Table, error) {
	b.Lock()
	defer b.Unlock()

	if len(b.backends) == 0 {
		return nil, ErrNoBackends
	}

	if b.passCount > 0 {
		table, err := lut.NewTable(b.table.Width, b.table.Height)
		if err != nil {
			return nil, err
		}
		b.table = table
		for _, backend := range b.backends {
			backend.Update(compute.UpdateTable, table)
		}
	}
	b.passCount++

	// Buffer a slot per row so backends never stall on completion
	// reports, even for an interrupted pass.
	rows := uint32(b.table.Height)
	doneChan := make(chan uint32, rows)
	errChan := make(chan error, len(b.backends))

	start := time.Now()
	blockAssignment := b.scheduler.Schedule(b.backends, rows)
	logger.Infof("baking %dx%d table across %d backends (block heights %v)", b.table.Width, b.table.Height, len(b.backends), blockAssignment)

	var blockY uint32
	for idx, backend := range b.backends {
		backend.Enqueue(compute.BlockRequest{
			BlockY:   blockY,
			BlockH:   blockAssignment[idx],
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockAssignment[idx]
	}

	for pendingRows := rows; pendingRows > 0; {
		// Poll for cancellation first so an interrupt always wins over
		// buffered row completions.
		select {
		case <-ctx.Done():
			return nil, ErrInterrupted
		default:
		}

		select {
		case rowCount := <-doneChan:
			pendingRows -= rowCount
			b.emitProgress(rows-pendingRows, rows)
		case err := <-errChan:
			return nil, err
		case <-ctx.Done():
			return nil, ErrInterrupted
		}
	}

	b.collectStats(time.Since(start))
	return b.table, nil
}

// Queue a new kernel on the attached backends. The table dimensions are
// fixed at construction so the new kernel must keep the previous
// parameterization dims.
func (b *defaultBaker) UpdateKernel(kernel *scatter.Kernel) {
	b.Lock()
	defer b.Unlock()

	b.kernel = kernel
	for _, backend := range b.backends {
		backend.Update(compute.UpdateKernel, kernel)
	}
}

// Shutdown baker and any attached backend.
func (b *defaultBaker) Close() {
	b.Lock()
	defer b.Unlock()

	for _, backend := range b.backends {
		backend.Close()
	}
	b.backends = nil
	b.kernel = nil
}

// Get bake statistics.
func (b *defaultBaker) Stats() BakeStats {
	b.Lock()
	defer b.Unlock()

	stats := BakeStats{
		Backends: make([]BackendStat, len(b.stats.Backends)),
		BakeTime: b.stats.BakeTime,
	}
	copy(stats.Backends, b.stats.Backends)
	return stats
}

func (b *defaultBaker) emitProgress(rows, total uint32) {
	if b.options.Progress == nil {
		return
	}
	select {
	case b.options.Progress <- Progress{Rows: rows, Total: total}:
	default:
		// drop the event if the receiver is not listening
	}
}

// Capture per-backend block statistics for the pass that just completed.
func (b *defaultBaker) collectStats(bakeTime time.Duration) {
	b.stats.BakeTime = bakeTime
	b.stats.Backends = b.stats.Backends[:0]

	totalRows := float32(b.table.Height)
	for idx, backend := range b.backends {
		stats := backend.Stats()
		b.stats.Backends = append(b.stats.Backends, BackendStat{
			Id:           backend.Id(),
			IsPrimary:    idx == 0,
			BlockH:       stats.BlockH,
			TablePercent: 100.0 * float32(stats.BlockH) / totalRows,
			BakeTime:     stats.BlockTime,
		})
	}
}
