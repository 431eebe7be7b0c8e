package book

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"hermes/infra/memory"
	"hermes/infra/sequence"
)

// Level is one rung of a depth snapshot: a price and the total
// non-canceled resting quantity at that price.
type Level struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

/*
OrderBook holds the resting orders of a single instrument and runs the
matching pass after every insertion.

Priority is strict price-time: best price first, earliest submission on
ties. Cancellation is lazy — Cancel only flips a flag, and the canceled
order is discarded when it next surfaces as a best candidate during a
matching pass.

A single mutex covers every public operation in full, including the
nested matching pass. The book is not internally concurrent; it only
has to be safe against Cancel calls arriving from arbitrary goroutines
while the matching worker runs.
*/
type OrderBook struct {
	mu     sync.Mutex
	bids   bidQueue
	asks   askQueue
	orders map[uint64]*Order // id -> resting order, evicted on discard
	trades []Trade
	seq    *sequence.Sequencer
	ring   *memory.RetireRing // may be nil; discarded orders are parked here
}

// NewOrderBook creates an empty book. ring may be nil, in which case
// discarded orders are left to the garbage collector.
func NewOrderBook(seq *sequence.Sequencer, ring *memory.RetireRing) *OrderBook {
	return &OrderBook{
		orders: make(map[uint64]*Order),
		seq:    seq,
		ring:   ring,
	}
}

// Add inserts an order and runs the matching pass. Market orders get
// their price overwritten with the aggressive sentinel for their side
// before insertion. The trades emitted by this insertion are returned;
// they are also appended to the book's trade log.
//
// Precondition: o.ID is not already present. The book does not detect
// duplicates.
func (b *OrderBook) Add(o *Order) []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o.Kind == Market {
		if o.Side == Buy {
			o.Price = MaxBuyPrice
		} else {
			o.Price = MinSellPrice
		}
	}

	b.orders[o.ID] = o
	if o.Side == Buy {
		heap.Push(&b.bids, o)
	} else {
		heap.Push(&b.asks, o)
	}

	return b.match()
}

// Cancel marks the order canceled if it is still known to the book.
// Unknown ids are ignored. The order is not removed from its priority
// queue here; removal is deferred to the next matching pass that sees
// it on top.
func (b *OrderBook) Cancel(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o, ok := b.orders[id]; ok {
		o.Canceled = true
	}
}

// match crosses the best bid against the best ask until prices no
// longer cross or one side empties. Called with the lock held.
func (b *OrderBook) match() []Trade {
	var emitted []Trade

	for b.bids.Len() > 0 && b.asks.Len() > 0 {
		buy := b.bids.Peek()
		sell := b.asks.Peek()

		// Lazy cancellation cleanup.
		if buy.Canceled {
			heap.Pop(&b.bids)
			b.discard(buy)
			continue
		}
		if sell.Canceled {
			heap.Pop(&b.asks)
			b.discard(sell)
			continue
		}

		if buy.Price < sell.Price {
			break
		}

		qty := buy.Qty
		if sell.Qty < qty {
			qty = sell.Qty
		}

		tr := Trade{
			Seq:         b.seq.Next(),
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Price:       executionPrice(buy, sell),
			Qty:         qty,
			Timestamp:   time.Now().UnixNano(),
		}

		buy.Qty -= qty
		sell.Qty -= qty

		b.trades = append(b.trades, tr)
		emitted = append(emitted, tr)

		if buy.Qty == 0 {
			heap.Pop(&b.bids)
			b.discard(buy)
		}
		if sell.Qty == 0 {
			heap.Pop(&b.asks)
			b.discard(sell)
		}
	}

	return emitted
}

// executionPrice applies the maker-price rule: the earlier-submitted
// order's price wins. A market order carries no genuine price, so a
// market-vs-limit cross always executes at the limit price. Two market
// orders crossing execute at 0 — a documented policy choice, not a
// realistic market rule.
func executionPrice(buy, sell *Order) int64 {
	switch {
	case buy.Kind == Market && sell.Kind == Market:
		return 0
	case buy.Kind == Market:
		return sell.Price
	case sell.Kind == Market:
		return buy.Price
	}
	if buy.Timestamp <= sell.Timestamp {
		return buy.Price
	}
	return sell.Price
}

// discard evicts a filled or canceled order from the id index and
// parks it on the retire ring for reclamation. Once evicted the id must
// not be reused. Called with the lock held, only from the matching
// pass, so the ring sees a single producer.
func (b *OrderBook) discard(o *Order) {
	delete(b.orders, o.ID)
	if b.ring != nil {
		// A full ring just means this order is left to the GC.
		_ = b.ring.Enqueue(o)
	}
}

// Trades returns a copy of the trade log.
func (b *OrderBook) Trades() []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// TradeCount returns the number of trades emitted so far.
func (b *OrderBook) TradeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.trades)
}

// BidCount reports the size of the buy queue. Orders canceled but not
// yet discarded are still counted, same as the queue they sit in.
func (b *OrderBook) BidCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bids.Len()
}

// AskCount reports the size of the sell queue.
func (b *OrderBook) AskCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asks.Len()
}

// Depth aggregates non-canceled resting quantity per price level.
// Bids come back best-first (descending), asks best-first (ascending).
// The walk happens under the book lock; only the copy escapes.
func (b *OrderBook) Depth() (bids, asks []Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bids = aggregate(b.bids, func(i, j Level) bool { return i.Price > j.Price })
	asks = aggregate(b.asks, func(i, j Level) bool { return i.Price < j.Price })
	return bids, asks
}

func aggregate(orders []*Order, less func(i, j Level) bool) []Level {
	byPrice := make(map[int64]int64)
	for _, o := range orders {
		if o.Canceled {
			continue
		}
		byPrice[o.Price] += o.Qty
	}

	levels := make([]Level, 0, len(byPrice))
	for price, qty := range byPrice {
		levels = append(levels, Level{Price: price, Qty: qty})
	}
	sort.Slice(levels, func(i, j int) bool { return less(levels[i], levels[j]) })
	return levels
}
