// Package book implements a single-instrument limit order book with
// strict price-time priority, lazy cancellation and maker-price
// execution. It is the deterministic core of the engine: one mutex,
// no goroutines, no I/O.
package book
