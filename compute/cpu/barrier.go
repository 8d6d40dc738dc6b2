package cpu

import "sync"

// A cyclic synchronization barrier for a fixed set of lanes. Await blocks
// until every lane has arrived, releases them all and resets for the next
// round.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
}

// Create a barrier that synchronizes parties lanes.
func NewBarrier(parties int) *Barrier {
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// The number of lanes the barrier synchronizes.
func (b *Barrier) Parties() int {
	return b.parties
}

// Block until all parties have arrived at the barrier.
func (b *Barrier) Await() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	for gen == b.generation {
		b.cond.Wait()
	}
}
