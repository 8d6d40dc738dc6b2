package baker

import "time"

type BackendStat struct {
	// The backend id.
	Id string

	// True if this is the primary backend
	IsPrimary bool

	// The block height and the percentage of total table area it represents.
	BlockH       uint32
	TablePercent float32

	// Bake time for assigned block
	BakeTime time.Duration
}

type BakeStats struct {
	// Individual backend stats.
	Backends []BackendStat

	// Total bake time for the entire table.
	BakeTime time.Duration
}
