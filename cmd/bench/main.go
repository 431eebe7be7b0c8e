// Load driver: pre-generates random orders, pushes them through the
// engine from several producers and reports throughput and book stats.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"hermes/domain/book"
	"hermes/engine"
	"hermes/infra/memory"
	"hermes/infra/sequence"
)

func main() {
	var (
		numOrders = flag.Int("n", 100000, "orders to submit")
		producers = flag.Int("p", 4, "producer goroutines")
		seed      = flag.Int64("seed", 1337, "rng seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	// Pre-generate so the measurement isolates engine latency.
	orders := make([]*book.Order, *numOrders)
	for i := range orders {
		kind := book.Limit
		if rng.Intn(10) == 0 {
			kind = book.Market
		}
		side := book.Buy
		if rng.Intn(2) == 1 {
			side = book.Sell
		}
		orders[i] = &book.Order{
			ID:        uint64(i + 1),
			Side:      side,
			Kind:      kind,
			Price:     9000 + rng.Int63n(2001), // 90.00 .. 110.00
			Qty:       10 + rng.Int63n(991),
			Timestamp: time.Now().UnixNano(),
		}
	}

	ring := memory.NewRetireRing(1 << 20)
	b := book.NewOrderBook(sequence.New(0), ring)
	eng := engine.New(b, nil, nil)
	eng.Start()

	fmt.Printf("submitting %d orders from %d producers...\n", *numOrders, *producers)
	start := time.Now()

	var wg sync.WaitGroup
	chunk := (*numOrders + *producers - 1) / *producers
	for p := 0; p < *producers; p++ {
		lo := p * chunk
		hi := min(lo+chunk, *numOrders)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(batch []*book.Order) {
			defer wg.Done()
			for _, o := range batch {
				eng.Submit(o)
			}
		}(orders[lo:hi])
	}
	wg.Wait()

	eng.Stop() // blocks until every pending order is matched
	elapsed := time.Since(start)

	fmt.Printf("\n=== results ===\n")
	fmt.Printf("orders processed:  %d\n", *numOrders)
	fmt.Printf("elapsed:           %v\n", elapsed)
	fmt.Printf("throughput:        %.0f orders/sec\n", float64(*numOrders)/elapsed.Seconds())
	fmt.Printf("trades executed:   %d\n", b.TradeCount())
	fmt.Printf("resting bids:      %d\n", b.BidCount())
	fmt.Printf("resting asks:      %d\n", b.AskCount())
}
