package engine

import (
	"sync"
	"testing"

	"hermes/domain/book"
	"hermes/infra/sequence"
)

func newTestEngine() (*Engine, *book.OrderBook) {
	b := book.NewOrderBook(sequence.New(0), nil)
	return New(b, nil, nil), b
}

func TestStopDrainsQueue(t *testing.T) {
	eng, b := newTestEngine()
	eng.Start()

	const n = 5000
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < n/8; i++ {
				id := uint64(p*(n/8) + i + 1)
				// Same side, no crossing: every order must rest.
				eng.Submit(&book.Order{
					ID:        id,
					Side:      book.Buy,
					Kind:      book.Limit,
					Price:     100,
					Qty:       1,
					Timestamp: int64(id),
				})
			}
		}(p)
	}
	wg.Wait()

	eng.Stop()

	if got := b.BidCount(); got != n {
		t.Fatalf("stop must drain the queue: expected %d resting orders, got %d", n, got)
	}
	if eng.Pending() != 0 {
		t.Error("pending queue not empty after stop")
	}
}

func TestStartStopAreIdempotent(t *testing.T) {
	eng, _ := newTestEngine()

	eng.Stop() // not running: no-op
	eng.Start()
	eng.Start() // already running: no-op
	eng.Stop()
	eng.Stop() // already stopped: no-op
}

func TestSubmissionsMatchInFIFOOrder(t *testing.T) {
	eng, b := newTestEngine()
	eng.Start()

	eng.Submit(&book.Order{ID: 1, Side: book.Buy, Kind: book.Limit, Price: 100, Qty: 5, Timestamp: 1})
	eng.Submit(&book.Order{ID: 2, Side: book.Sell, Kind: book.Limit, Price: 100, Qty: 5, Timestamp: 2})
	eng.Stop()

	trades := b.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].BuyOrderID != 1 || trades[0].SellOrderID != 2 {
		t.Errorf("unexpected participants: %+v", trades[0])
	}
}

func TestCancelBypassesQueue(t *testing.T) {
	eng, b := newTestEngine()
	eng.Start()
	eng.Submit(&book.Order{ID: 1, Side: book.Buy, Kind: book.Limit, Price: 100, Qty: 5, Timestamp: 1})
	eng.Stop() // order now rests

	eng.Cancel(1) // direct, engine not even running

	eng.Start()
	eng.Submit(&book.Order{ID: 2, Side: book.Sell, Kind: book.Limit, Price: 100, Qty: 5, Timestamp: 2})
	eng.Stop()

	if n := len(b.Trades()); n != 0 {
		t.Fatalf("canceled order must not trade, got %d trades", n)
	}
	if b.BidCount() != 0 {
		t.Error("canceled bid should be discarded by the matching pass")
	}
}

func TestRestartProcessesNewSubmissions(t *testing.T) {
	eng, b := newTestEngine()
	eng.Start()
	eng.Submit(&book.Order{ID: 1, Side: book.Buy, Kind: book.Limit, Price: 100, Qty: 1, Timestamp: 1})
	eng.Stop()

	eng.Start()
	eng.Submit(&book.Order{ID: 2, Side: book.Buy, Kind: book.Limit, Price: 101, Qty: 1, Timestamp: 2})
	eng.Stop()

	if got := b.BidCount(); got != 2 {
		t.Fatalf("expected 2 resting orders across restarts, got %d", got)
	}
}

type countingSink struct {
	mu     sync.Mutex
	trades []book.Trade
}

func (s *countingSink) Record(trades []book.Trade) {
	s.mu.Lock()
	s.trades = append(s.trades, trades...)
	s.mu.Unlock()
}

func TestSinkReceivesEmittedTrades(t *testing.T) {
	sink := &countingSink{}
	b := book.NewOrderBook(sequence.New(0), nil)
	eng := New(b, sink, nil)
	eng.Start()

	eng.Submit(&book.Order{ID: 1, Side: book.Sell, Kind: book.Limit, Price: 100, Qty: 3, Timestamp: 1})
	eng.Submit(&book.Order{ID: 2, Side: book.Buy, Kind: book.Market, Qty: 3, Timestamp: 2})
	eng.Stop()

	if len(sink.trades) != 1 {
		t.Fatalf("expected sink to see 1 trade, got %d", len(sink.trades))
	}
	if sink.trades[0].Price != 100 {
		t.Errorf("expected execution at resting price 100, got %d", sink.trades[0].Price)
	}
}

func TestConcurrentSubmitAndCancel(t *testing.T) {
	eng, b := newTestEngine()
	eng.Start()

	const n = 2000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			eng.Submit(&book.Order{
				ID:        uint64(i),
				Side:      book.Buy,
				Kind:      book.Limit,
				Price:     int64(90 + i%20),
				Qty:       1,
				Timestamp: int64(i),
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i += 3 {
			eng.Cancel(uint64(i)) // may race submission; both outcomes are legal
		}
	}()
	wg.Wait()

	eng.Stop()

	if got := b.BidCount(); got > n {
		t.Fatalf("book grew beyond submissions: %d", got)
	}
}
