package compute

import (
	"time"

	"github.com/auroralab/aurora/lut"
	"github.com/auroralab/aurora/scatter"
)

type Change uint8

const (
	UpdateKernel Change = iota
	UpdateTable
)

// A unit of work that is processed by a backend.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A channel to signal on with the number of baked rows as the
	// backend works through the block.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Backend statistics.
type Stats struct {
	// The baked block height.
	BlockH uint32

	// The time spent baking this block.
	BlockTime time.Duration
}

type Backend interface {
	// Get backend id.
	Id() string

	// Shutdown and cleanup backend.
	Close()

	// Get the backend's computation speed estimate compared to a
	// baseline single-lane implementation.
	SpeedEstimate() float32

	// Setup the backend for baking table texels with kernel.
	Setup(kernel *scatter.Kernel, table *lut.Table) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the backend's update buffer. Pending changes
	// are committed before the next enqueued block is baked.
	Update(Change, interface{})

	// Retrieve last block statistics.
	Stats() *Stats
}
