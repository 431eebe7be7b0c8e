package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hermes/domain/book"
	"hermes/engine"
	"hermes/infra/journal"
	"hermes/infra/memory"
	"hermes/snapshot"
)

/*
OrderService is the only write entry point into the system.

All coordination between domain (book), engine (submission queue and
matching worker), infra (pool, retire ring, journal) and snapshot
readers happens here. The service allocates orders from the pool and
stamps their submission timestamps; callers only provide the id, side,
kind, price and quantity.
*/
type OrderService struct {
	book   *book.OrderBook
	eng    *engine.Engine
	pool   *memory.Pool[book.Order]
	ring   *memory.RetireRing
	reader *snapshot.Reader
	log    *zap.Logger
}

func New(
	b *book.OrderBook,
	eng *engine.Engine,
	pool *memory.Pool[book.Order],
	ring *memory.RetireRing,
	reader *snapshot.Reader,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		book:   b,
		eng:    eng,
		pool:   pool,
		ring:   ring,
		reader: reader,
		log:    log,
	}
}

// Start brings up the matching worker.
func (s *OrderService) Start() { s.eng.Start() }

// Stop drains the submission queue and stops the worker.
func (s *OrderService) Stop() { s.eng.Stop() }

// Place submits a new order. The id must be unique across the life of
// the book; the core does not check this. The submission timestamp is
// assigned here, once, and is never revised.
func (s *OrderService) Place(id uint64, side book.Side, kind book.Kind, price, qty int64) {
	o := s.pool.Get()
	*o = book.Order{
		ID:        id,
		Side:      side,
		Kind:      kind,
		Price:     price,
		Qty:       qty,
		Timestamp: time.Now().UnixNano(),
	}
	s.eng.Submit(o)
}

// Cancel flags the order canceled, synchronously. Unknown ids are
// ignored.
func (s *OrderService) Cancel(id uint64) {
	s.eng.Cancel(id)
}

// Trades returns a copy of the ordered trade log.
func (s *OrderService) Trades() []book.Trade { return s.book.Trades() }

// BidCount reports resting buy orders, AskCount resting sells.
func (s *OrderService) BidCount() int { return s.book.BidCount() }
func (s *OrderService) AskCount() int { return s.book.AskCount() }

// Depth returns a consistent liquidity snapshot. The reader epoch
// brackets the walk so reclamation cannot recycle an order mid-read.
func (s *OrderService) Depth() snapshot.Depth {
	s.reader.Begin()
	defer s.reader.End()

	bids, asks := s.book.Depth()
	return snapshot.Depth{
		Taken: time.Now(),
		Bids:  bids,
		Asks:  asks,
	}
}

// AdvanceEpoch reclaims retired orders that no reader can still see.
func (s *OrderService) AdvanceEpoch() {
	memory.AdvanceEpochAndReclaim(s.ring, s.pool, s.reader.Epoch())
}

// StartReclaimJob runs AdvanceEpoch periodically until ctx is done.
func (s *OrderService) StartReclaimJob(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.AdvanceEpoch()
			}
		}
	}()
}

// JournalSink adapts the trade journal to the engine's TradeSink. An
// append failure is logged, never propagated into the matching path.
type JournalSink struct {
	Journal *journal.Journal
	Log     *zap.Logger
}

func (s *JournalSink) Record(trades []book.Trade) {
	for _, tr := range trades {
		if err := s.Journal.Append(tr); err != nil {
			if s.Log != nil {
				s.Log.Error("journal append failed",
					zap.Uint64("seq", tr.Seq),
					zap.Error(err),
				)
			}
		}
	}
}
