package snapshot

import (
	"time"

	"hermes/domain/book"
)

// Depth is a point-in-time view of resting liquidity, best levels
// first on both sides.
type Depth struct {
	Taken time.Time    `json:"taken"`
	Bids  []book.Level `json:"bids"`
	Asks  []book.Level `json:"asks"`
}
