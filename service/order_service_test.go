package service

import (
	"testing"

	"hermes/domain/book"
	"hermes/engine"
	"hermes/infra/memory"
	"hermes/infra/sequence"
	"hermes/snapshot"
)

func newTestService() (*OrderService, *memory.RetireRing) {
	pool := memory.NewPool(func() *book.Order { return &book.Order{} })
	ring := memory.NewRetireRing(1 << 10)
	reader := snapshot.NewReader()
	b := book.NewOrderBook(sequence.New(0), ring)
	eng := engine.New(b, nil, nil)
	return New(b, eng, pool, ring, reader, nil), ring
}

func TestPlaceAndMatchThroughService(t *testing.T) {
	svc, _ := newTestService()
	svc.Start()

	svc.Place(1, book.Buy, book.Limit, 105, 10)
	svc.Place(2, book.Buy, book.Limit, 100, 5)
	svc.Place(3, book.Sell, book.Limit, 102, 8)
	svc.Stop()

	trades := svc.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Qty != 8 || trades[0].Price != 105 {
		t.Errorf("unexpected trade: %+v", trades[0])
	}
	if svc.AskCount() != 0 {
		t.Error("sell side should be empty")
	}

	depth := svc.Depth()
	if len(depth.Bids) != 2 || depth.Bids[0].Qty != 2 {
		t.Errorf("unexpected depth: %+v", depth.Bids)
	}
}

func TestCancelThroughService(t *testing.T) {
	svc, _ := newTestService()
	svc.Start()
	svc.Place(1, book.Buy, book.Limit, 100, 5)
	svc.Stop()

	svc.Cancel(1)

	svc.Start()
	svc.Place(2, book.Sell, book.Limit, 100, 5)
	svc.Stop()

	if n := len(svc.Trades()); n != 0 {
		t.Fatalf("canceled order traded: %d trades", n)
	}
}

func TestReclaimAfterFills(t *testing.T) {
	svc, ring := newTestService()
	svc.Start()
	for i := 0; i < 10; i++ {
		svc.Place(uint64(2*i+1), book.Buy, book.Limit, 100, 1)
		svc.Place(uint64(2*i+2), book.Sell, book.Limit, 100, 1)
	}
	svc.Stop()

	if n := len(svc.Trades()); n != 10 {
		t.Fatalf("expected 10 trades, got %d", n)
	}

	// Filled orders sit on the retire ring; with no snapshot open the
	// sweep must drain all of them back into the pool, even if Depth
	// was never called.
	svc.AdvanceEpoch()
	if ring.Dequeue() != nil {
		t.Error("retire ring not drained by reclamation sweep")
	}
}

func TestMarketOrderThroughService(t *testing.T) {
	svc, _ := newTestService()
	svc.Start()
	svc.Place(1, book.Sell, book.Limit, 101, 5)
	svc.Place(2, book.Buy, book.Market, 0, 5)
	svc.Stop()

	trades := svc.Trades()
	if len(trades) != 1 || trades[0].Price != 101 {
		t.Fatalf("market buy should execute at resting price, got %+v", trades)
	}
}
