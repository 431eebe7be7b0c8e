package memory

import "sync/atomic"

// GlobalEpoch monotonically increases; readers stamp themselves with
// it on entering a read section.
var GlobalEpoch atomic.Uint64

const inactive = ^uint64(0)

// ReaderEpoch marks when a reader entered a read section.
type ReaderEpoch struct {
	epoch atomic.Uint64
}

func (r *ReaderEpoch) Enter() {
	r.epoch.Store(GlobalEpoch.Load())
}

func (r *ReaderEpoch) Exit() {
	r.epoch.Store(inactive)
}

func (r *ReaderEpoch) Value() uint64 {
	return r.epoch.Load()
}

// ReclaimablePool is the only requirement reclamation places on a
// pool. Intentionally type-erased.
type ReclaimablePool interface {
	PutAny(any)
}

// AdvanceEpochAndReclaim bumps the global epoch and returns retired
// objects to the pool while no active reader could still observe them.
// The ring is FIFO, so the first unsafe object stops the sweep.
func AdvanceEpochAndReclaim(ring *RetireRing, pool ReclaimablePool, readers ...*ReaderEpoch) {
	GlobalEpoch.Add(1)
	min := minReaderEpoch(readers...)

	for {
		obj := ring.Dequeue()
		if obj == nil {
			return
		}

		if min == inactive {
			pool.PutAny(obj)
			continue
		}

		_ = ring.Enqueue(obj)
		return
	}
}

func minReaderEpoch(rs ...*ReaderEpoch) uint64 {
	min := inactive
	for _, r := range rs {
		if r == nil {
			continue
		}
		if v := r.Value(); v < min {
			min = v
		}
	}
	return min
}
