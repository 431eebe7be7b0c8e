package journal

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"hermes/domain/book"
)

// State tracks a trade's progress through the publish pipeline.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Record pairs a journaled trade with its publish state.
type Record struct {
	Trade book.Trade
	State State
}

// Journal is the durable trade outbox: every emitted trade is appended
// under its sequence number and worked through NEW → SENT → ACKED by
// the broadcaster. The book itself is never persisted here.
//
// Value layout: [state:1][trade record, protobuf wire format].
type Journal struct {
	db *pebble.DB
}

func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // trades must survive a crash
	})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append journals a freshly emitted trade in state NEW.
func (j *Journal) Append(tr book.Trade) error {
	val := make([]byte, 1, 64)
	val[0] = byte(StateNew)
	val = appendTrade(val, tr)
	return j.db.Set(keyFor(tr.Seq), val, pebble.Sync)
}

// MarkSent flips a record to SENT before the publish attempt.
func (j *Journal) MarkSent(seq uint64) error {
	return j.setState(seq, StateSent)
}

// MarkAcked flips a record to ACKED after broker confirmation.
func (j *Journal) MarkAcked(seq uint64) error {
	return j.setState(seq, StateAcked)
}

func (j *Journal) setState(seq uint64, state State) error {
	rec, err := j.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state

	val := make([]byte, 1, 64)
	val[0] = byte(state)
	val = appendTrade(val, rec.Trade)
	return j.db.Set(keyFor(seq), val, pebble.Sync)
}

// Get returns the record for a trade sequence number.
func (j *Journal) Get(seq uint64) (Record, error) {
	val, closer, err := j.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(val)
}

// ScanPending visits every record not yet ACKED, in sequence order.
// Used by the broadcaster; a non-nil error from fn aborts the scan.
func (j *Journal) ScanPending(fn func(rec Record) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State == StateAcked {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// DeleteAcked removes ACKED records with seq <= upTo (cleanup).
func (j *Journal) DeleteAcked(upTo uint64) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: append(keyFor(upTo), '~'),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != StateAcked {
			continue
		}
		if err := j.db.Delete(append([]byte{}, iter.Key()...), pebble.Sync); err != nil {
			return err
		}
	}
	return iter.Error()
}

func decodeRecord(val []byte) (Record, error) {
	if len(val) < 1 {
		return Record{}, errors.New("journal: empty record")
	}
	tr, err := decodeTrade(val[1:])
	if err != nil {
		return Record{}, err
	}
	return Record{Trade: tr, State: State(val[0])}, nil
}

const keyPrefix = "trade/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}
