package compute

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split the table into blocks of variable height and assign them to
	// the pool of backends.
	//
	// This function returns the block height assignment for each backend
	// in the input list.
	Schedule(backends []Backend, rows uint32) []uint32
}

// The naive scheduler splits rows uniformly between backends and ignores
// their speed estimates.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

// Split the table into equal-height blocks, one per backend. Rows left over
// by the integer division are assigned to the first backend.
func (sch *naiveScheduler) Schedule(backends []Backend, rows uint32) []uint32 {
	if len(sch.blockAssignment) != len(backends) {
		sch.blockAssignment = make([]uint32, len(backends))
	}

	share := rows / uint32(len(backends))
	var scheduledRows uint32
	for idx := range backends {
		sch.blockAssignment[idx] = share
		scheduledRows += share
	}
	sch.blockAssignment[0] += rows - scheduledRows

	return sch.blockAssignment
}

// The feedback scheduler assumes that the volume of work between two
// subsequent passes over the table is approximately the same.
type feedbackScheduler struct {
	blockAssignment []uint32
}

// Create a new feedback scheduler instance.
func FeedbackScheduler() BlockScheduler {
	return &feedbackScheduler{}
}

// Split the table into blocks of variable height and assign them to the
// pool of backends using feedback collected from previous passes.
//
// This function returns the block height assignment for each backend in the
// input list. When previous pass statistics are available the scheduler
// uses the following formula for estimating the workload for backend w and
// pass i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i / time_i)
func (sch *feedbackScheduler) Schedule(backends []Backend, rows uint32) []uint32 {
	var total float64
	var scaler float64

	// If this is the first time we try to schedule or the number of
	// backends has changed we fall back to the static speed estimates.
	if len(sch.blockAssignment) != len(backends) {
		sch.blockAssignment = make([]uint32, len(backends))

		for _, b := range backends {
			total += float64(b.SpeedEstimate())
		}
		scaler = float64(rows) / total

		var scheduledRows uint32
		for idx, b := range backends {
			sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(b.SpeedEstimate())*scaler)))
			scheduledRows += sch.blockAssignment[idx]
		}
		sch.blockAssignment[0] += rows - scheduledRows

		return sch.blockAssignment
	}

	// Use last pass statistics.
	var stats *Stats
	for _, b := range backends {
		stats = b.Stats()
		total += float64(stats.BlockH) / float64(stats.BlockTime)
	}

	scaler = float64(rows) / total
	var scheduledRows uint32
	for idx, b := range backends {
		stats = b.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.BlockTime)*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the table height append the missing
	// ones to the first backend.
	sch.blockAssignment[0] += rows - scheduledRows

	return sch.blockAssignment
}
