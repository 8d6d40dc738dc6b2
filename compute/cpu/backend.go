// Package cpu implements the CPU compute backend: a persistent lane group
// evaluates LUT texels with the scattering kernel, reducing per-lane
// samples with either a collective or a tree strategy.
package cpu

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/auroralab/aurora/compute"
	"github.com/auroralab/aurora/log"
	"github.com/auroralab/aurora/lut"
	"github.com/auroralab/aurora/scatter"
)

var (
	ErrAlreadySetup    = errors.New("cpu: backend is already set up")
	ErrInvalidUpdate   = errors.New("cpu: invalid update buffer payload")
	ErrTableMismatch   = errors.New("cpu: table dimensions do not match the kernel parameterization")
	ErrBlockOutOfRange = errors.New("cpu: block request exceeds the table height")
)

type cpuBackend struct {
	sync.Mutex
	wg sync.WaitGroup

	logger log.Logger

	// The backend's id.
	id string

	// The reduction strategy for this backend's lane group.
	strategy Strategy

	// The lane group evaluating texels for this backend.
	group *Group

	// The kernel and output table used for enqueued blocks.
	kernel *scatter.Kernel
	table  *lut.Table

	// Pending updates keyed by change type; committed by the worker
	// before the next block is baked.
	updateBuffer map[compute.Change]interface{}

	// Last block statistics.
	stats compute.Stats

	// A channel for receiving block requests from the baker.
	blockReqChan chan compute.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}
}

// Create a new cpu backend that reduces lane samples with the given
// strategy. The lane group is sized to the kernel supplied to Setup.
func NewBackend(id string, strategy Strategy) compute.Backend {
	return &cpuBackend{
		logger:       log.New("cpu"),
		id:           id,
		strategy:     strategy,
		updateBuffer: make(map[compute.Change]interface{}),
		blockReqChan: make(chan compute.BlockRequest, 1),
	}
}

// Get backend id.
func (b *cpuBackend) Id() string {
	return b.id
}

// Get the backend's computation speed estimate. Lane goroutines share the
// machine's cores so the estimate scales with the core count.
func (b *cpuBackend) SpeedEstimate() float32 {
	return float32(runtime.NumCPU())
}

// Shutdown and cleanup backend.
func (b *cpuBackend) Close() {
	b.Lock()
	closeChan := b.closeChan
	b.closeChan = nil
	b.Unlock()

	if closeChan == nil {
		return
	}

	// Signal worker to exit and wait till it exits
	close(closeChan)
	b.wg.Wait()

	b.Lock()
	group := b.group
	b.group = nil
	b.kernel = nil
	b.table = nil
	b.Unlock()

	if group != nil {
		group.Close()
	}
}

// Attach the backend to a kernel and an output table and start processing
// incoming block requests.
func (b *cpuBackend) Setup(kernel *scatter.Kernel, table *lut.Table) error {
	b.Lock()
	defer b.Unlock()

	if b.group != nil {
		return ErrAlreadySetup
	}
	if err := checkTable(kernel, table); err != nil {
		return err
	}

	group, err := NewGroup(kernel.Samples(), b.strategy)
	if err != nil {
		return err
	}
	b.group = group
	b.kernel = kernel
	b.table = table
	b.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	closeChan := b.closeChan
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		var blockReq compute.BlockRequest
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-b.blockReqChan:
				// Bake block; row completions are reported by
				// bakeBlock as they happen
				err = b.bakeBlock(blockReq)
				if err != nil {
					blockReq.ErrChan <- err
				}
			case <-closeChan:
				return
			}
		}
	}()

	// Wait for worker goroutine to start
	<-readyChan

	b.logger.Infof("%s: lane group ready (%d lanes, %s reduction)", b.id, group.Lanes(), b.strategy)
	return nil
}

// Enqueue block request.
func (b *cpuBackend) Enqueue(blockReq compute.BlockRequest) {
	select {
	case b.blockReqChan <- blockReq:
	default:
		// drop the request if the worker is not listening
	}
}

// Append a change to the backend's update buffer. Pending changes are
// committed before the next enqueued block is baked.
func (b *cpuBackend) Update(change compute.Change, data interface{}) {
	b.Lock()
	b.updateBuffer[change] = data
	b.Unlock()
}

// Retrieve last block statistics.
func (b *cpuBackend) Stats() *compute.Stats {
	b.Lock()
	stats := b.stats
	b.Unlock()
	return &stats
}

// Bake a single block of table rows, signaling the request's done channel
// with a row count as each row completes.
func (b *cpuBackend) bakeBlock(blockReq compute.BlockRequest) error {
	start := time.Now()

	if err := b.commitUpdates(); err != nil {
		return err
	}

	b.Lock()
	kernel, table, group := b.kernel, b.table, b.group
	b.Unlock()

	if blockReq.BlockY+blockReq.BlockH > uint32(table.Height) {
		b.logger.Errorf("%s: block [%d, %d) exceeds table height %d", b.id, blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, table.Height)
		return ErrBlockOutOfRange
	}
	if blockReq.BlockH == 0 {
		return nil
	}

	last := blockReq.BlockY + blockReq.BlockH - 1
	for y := blockReq.BlockY; y <= last; y++ {
		for x := 0; x < table.Width; x++ {
			table.Set(x, int(y), group.Evaluate(kernel.Parameterize(x, int(y))))
		}

		// Commit stats before the final row is reported so a scheduler
		// reacting to block completion sees this block's timings.
		if y == last {
			b.Lock()
			b.stats.BlockH = blockReq.BlockH
			b.stats.BlockTime = time.Since(start)
			b.Unlock()
		}

		blockReq.DoneChan <- 1
	}

	return nil
}

// Commit pending updates from the update buffer. Called by the worker
// before baking each block so a running bake never observes a partial
// update.
func (b *cpuBackend) commitUpdates() error {
	b.Lock()
	defer b.Unlock()

	if len(b.updateBuffer) == 0 {
		return nil
	}

	kernel, table := b.kernel, b.table
	if data, exists := b.updateBuffer[compute.UpdateKernel]; exists {
		k, ok := data.(*scatter.Kernel)
		if !ok || k == nil {
			return ErrInvalidUpdate
		}
		kernel = k
	}
	if data, exists := b.updateBuffer[compute.UpdateTable]; exists {
		t, ok := data.(*lut.Table)
		if !ok || t == nil {
			return ErrInvalidUpdate
		}
		table = t
	}
	if err := checkTable(kernel, table); err != nil {
		return err
	}

	// A kernel with a different sample count needs a matching lane group.
	if kernel.Samples() != b.group.Lanes() {
		group, err := NewGroup(kernel.Samples(), b.strategy)
		if err != nil {
			return err
		}
		b.group.Close()
		b.group = group
	}

	b.kernel = kernel
	b.table = table
	b.updateBuffer = make(map[compute.Change]interface{})
	return nil
}

func checkTable(kernel *scatter.Kernel, table *lut.Table) error {
	if kernel == nil || table == nil {
		return ErrInvalidUpdate
	}
	params := kernel.Params()
	if params.Width != table.Width || params.Height != table.Height {
		return ErrTableMismatch
	}
	return nil
}
