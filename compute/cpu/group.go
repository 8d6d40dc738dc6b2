package cpu

import (
	"fmt"
	"sync"

	"github.com/auroralab/aurora/scatter"
	"github.com/auroralab/aurora/types"
)

// Reduction strategy used by a lane group.
type Strategy uint8

const (
	// Collective gathers lane samples over per-lane channels and folds
	// them in lane index order.
	Collective Strategy = iota

	// Tree halves a shared scratch buffer with a barrier between steps.
	Tree
)

func (s Strategy) String() string {
	switch s {
	case Collective:
		return "collective"
	case Tree:
		return "tree"
	}
	return "unknown"
}

// A Group owns a fixed set of persistent lane goroutines that evaluate
// texels in lockstep: each lane integrates its own sphere direction and
// the group reduces the partial samples into a single texel value.
type Group struct {
	lanes    int
	strategy Strategy
	reducer  Reducer

	jobs   []chan *scatter.Eval
	result chan types.Vec3
	wg     sync.WaitGroup
}

// Create a lane group that reduces with the given strategy. The lane count
// must match the kernel's direction sample count so each lane owns exactly
// one direction, and must be a power of two to keep the tree reduction
// well defined.
func NewGroup(lanes int, strategy Strategy) (*Group, error) {
	if lanes < 1 || lanes&(lanes-1) != 0 {
		return nil, fmt.Errorf("cpu: group size must be a power of two; got %d", lanes)
	}

	var reducer Reducer
	var err error
	switch strategy {
	case Collective:
		reducer = NewCollectiveReducer(lanes)
	case Tree:
		reducer, err = NewTreeReducer(lanes, NewBarrier(lanes))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cpu: unknown reduction strategy %d", strategy)
	}

	g := &Group{
		lanes:    lanes,
		strategy: strategy,
		reducer:  reducer,
		jobs:     make([]chan *scatter.Eval, lanes),
		result:   make(chan types.Vec3, 1),
	}
	for i := range g.jobs {
		g.jobs[i] = make(chan *scatter.Eval)
	}

	g.wg.Add(lanes)
	for i := 0; i < lanes; i++ {
		go g.lane(i)
	}

	return g, nil
}

// The group size.
func (g *Group) Lanes() int {
	return g.lanes
}

// The group's reduction strategy.
func (g *Group) Strategy() Strategy {
	return g.strategy
}

// Evaluate runs one texel evaluation across the group and returns the
// final texel value. A group evaluates one texel at a time; Evaluate is
// not safe for concurrent use.
func (g *Group) Evaluate(e *scatter.Eval) types.Vec3 {
	for _, ch := range g.jobs {
		ch <- e
	}
	return <-g.result
}

// Close shuts down the lane goroutines. The group must be idle.
func (g *Group) Close() {
	for _, ch := range g.jobs {
		close(ch)
	}
	g.wg.Wait()
}

func (g *Group) lane(i int) {
	defer g.wg.Done()

	for e := range g.jobs[i] {
		radiance, density := e.Sample(i)
		total, designated := g.reducer.Reduce(i, Sample{Radiance: radiance, Density: density})
		if designated {
			g.result <- e.Finalize(total.Radiance, total.Density)
		}
	}
}
