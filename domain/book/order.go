package book

import "math"

type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

type Kind uint8

const (
	Limit Kind = iota
	Market
)

func (k Kind) String() string {
	if k == Market {
		return "market"
	}
	return "limit"
}

// Sentinel prices assigned to market orders so they always win
// priority comparisons on their side.
const (
	MaxBuyPrice  = int64(math.MaxInt64)
	MinSellPrice = int64(0)
)

// Order is a single submission. ID uniqueness is the caller's
// responsibility; the book does not check it. Qty and Canceled are
// mutable and guarded by the book's lock once the order is inserted.
type Order struct {
	ID        uint64
	Side      Side
	Kind      Kind
	Price     int64 // integer price units (e.g. cents)
	Qty       int64 // remaining quantity
	Timestamp int64 // submission instant, ns; the price-tie break
	Canceled  bool
}
