package engine

import (
	"sync"

	"go.uber.org/zap"

	"hermes/domain/book"
)

// TradeSink receives the trades emitted by each insertion, in emission
// order. Record is called from the matching worker, one batch per
// processed order.
type TradeSink interface {
	Record(trades []book.Trade)
}

/*
Engine serializes concurrent submissions into a single-writer stream.

Submit enqueues; exactly one worker goroutine drains the queue in FIFO
order and feeds each order into the book, which matches inline before
the next order is dequeued. Cancel bypasses the queue entirely — it
only flips a flag on the book, which is safe to interleave with
matching — so a cancel takes effect the instant it lands, independent
of queue position.

Stop is a cooperative drain: it refuses new wakeups, lets the worker
finish everything already enqueued, and returns only after the worker
has exited. Submissions enqueued before Stop are never dropped.
*/
type Engine struct {
	book *book.OrderBook
	sink TradeSink // may be nil
	log  *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*book.Order
	running bool
	done    chan struct{}
}

func New(b *book.OrderBook, sink TradeSink, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		book: b,
		sink: sink,
		log:  log,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Start spins up the worker. No-op when already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.done = make(chan struct{})
	go e.run(e.done)

	e.log.Info("engine started")
}

// Stop signals the worker to exit once the queue is drained and blocks
// until it has. No-op when not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	done := e.done
	e.cond.Broadcast()
	e.mu.Unlock()

	<-done
	e.log.Info("engine stopped")
}

// Submit enqueues an order for the worker. It never blocks beyond the
// queue's mutex. The caller must not touch the order afterwards; the
// book owns it from here on.
func (e *Engine) Submit(o *book.Order) {
	e.mu.Lock()
	e.pending = append(e.pending, o)
	e.cond.Signal()
	e.mu.Unlock()
}

// Cancel forwards directly to the book, synchronously from the calling
// goroutine. It does not queue.
func (e *Engine) Cancel(id uint64) {
	e.book.Cancel(id)
}

// Pending reports the number of orders waiting for the worker.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) run(done chan struct{}) {
	defer close(done)

	for {
		e.mu.Lock()
		for len(e.pending) == 0 && e.running {
			e.cond.Wait()
		}
		if len(e.pending) == 0 {
			// Stopped and fully drained.
			e.mu.Unlock()
			return
		}
		o := e.pending[0]
		e.pending[0] = nil
		e.pending = e.pending[1:]
		e.mu.Unlock()

		trades := e.book.Add(o)
		if e.sink != nil && len(trades) > 0 {
			e.sink.Record(trades)
		}
	}
}
