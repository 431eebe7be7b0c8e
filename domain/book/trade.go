package book

// Trade records one execution. It references the participating orders
// by id only, so it stays valid after both orders are gone. Trades are
// immutable once emitted.
type Trade struct {
	Seq         uint64 // assigned by the book, starts at 1
	BuyOrderID  uint64
	SellOrderID uint64
	Price       int64
	Qty         int64
	Timestamp   int64 // emission instant, ns
}
