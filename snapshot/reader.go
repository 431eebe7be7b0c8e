package snapshot

import "hermes/infra/memory"

// Reader is a thin adapter over memory.ReaderEpoch. It only marks when
// a snapshot begins and ends; epoching and reclamation live elsewhere.
type Reader struct {
	epoch *memory.ReaderEpoch
}

func NewReader() *Reader {
	r := &Reader{
		epoch: &memory.ReaderEpoch{},
	}
	// A fresh reader is outside any read section; without this the
	// zero epoch would pin reclamation forever.
	r.epoch.Exit()
	return r
}

// Begin marks the start of a consistent snapshot.
func (r *Reader) Begin() {
	r.epoch.Enter()
}

// End marks the end of a snapshot.
func (r *Reader) End() {
	r.epoch.Exit()
}

// Epoch exposes the underlying epoch for reclaimers.
func (r *Reader) Epoch() *memory.ReaderEpoch {
	return r.epoch
}
