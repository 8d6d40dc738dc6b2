package cpu

import (
	"fmt"

	"github.com/auroralab/aurora/types"
)

// A per-lane partial integration result.
type Sample struct {
	Radiance types.Vec3
	Density  types.Vec3
}

// Per-channel sum of two samples.
func (s Sample) Add(s2 Sample) Sample {
	return Sample{
		Radiance: s.Radiance.Add(s2.Radiance),
		Density:  s.Density.Add(s2.Density),
	}
}

// The Reducer interface is implemented by the strategies that combine
// per-lane samples into a group total.
//
// Every lane in a group calls Reduce with its own partial sample. Lane 0
// receives the group total and true; every other lane receives a zero
// sample and false and may reuse its local state immediately. Reducers are
// cyclic: a group reuses one instance for every texel it evaluates.
type Reducer interface {
	Reduce(lane int, s Sample) (Sample, bool)
}

// A manual binary tree reduction through a scratch buffer shared by the
// whole group. Lanes deposit their samples and then halve the active range
// until the total collects in slot 0. The barrier fences the deposits and
// every halving step so no lane reads a slot before its writer is done.
type treeReducer struct {
	scratch []Sample
	barrier *Barrier
}

// Create a tree reducer for a group of lanes sharing the given barrier.
// The halving scheme requires a power of two lane count and a barrier that
// synchronizes exactly the group's lanes; anything else fails fast.
func NewTreeReducer(lanes int, barrier *Barrier) (Reducer, error) {
	if lanes < 1 || lanes&(lanes-1) != 0 {
		return nil, fmt.Errorf("cpu: tree reduction requires a power of two lane count; got %d", lanes)
	}
	if barrier == nil || barrier.Parties() != lanes {
		return nil, fmt.Errorf("cpu: tree reduction for %d lanes needs a barrier with %d parties", lanes, lanes)
	}

	return &treeReducer{
		scratch: make([]Sample, lanes),
		barrier: barrier,
	}, nil
}

func (r *treeReducer) Reduce(lane int, s Sample) (Sample, bool) {
	r.scratch[lane] = s
	r.barrier.Await()

	for active := len(r.scratch) >> 1; active > 0; active >>= 1 {
		if lane < active {
			r.scratch[lane] = r.scratch[lane].Add(r.scratch[lane+active])
		}
		r.barrier.Await()
	}

	if lane != 0 {
		return Sample{}, false
	}
	return r.scratch[0], true
}

// A collective sum over per-lane channels. Every lane hands its sample to
// lane 0, which folds the group total in lane index order, making the
// result bit identical to a serial accumulation. No barrier is needed: the
// single-slot channels keep successive rounds from mixing.
type collectiveReducer struct {
	gather []chan Sample
}

// Create a collective reducer for a group of lanes.
func NewCollectiveReducer(lanes int) Reducer {
	gather := make([]chan Sample, lanes)
	for i := range gather {
		gather[i] = make(chan Sample, 1)
	}
	return &collectiveReducer{gather: gather}
}

func (r *collectiveReducer) Reduce(lane int, s Sample) (Sample, bool) {
	if lane != 0 {
		r.gather[lane] <- s
		return Sample{}, false
	}

	total := s
	for _, ch := range r.gather[1:] {
		total = total.Add(<-ch)
	}
	return total, true
}
