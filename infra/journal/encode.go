package journal

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"

	"hermes/domain/book"
)

// Trade records are stored in protobuf wire format. Field numbers:
//
//	1 seq        varint
//	2 buy id     varint
//	3 sell id    varint
//	4 price      varint
//	5 qty        varint
//	6 timestamp  varint
//
// Unknown fields are skipped on decode so the layout can grow.
const (
	fieldSeq = iota + 1
	fieldBuyID
	fieldSellID
	fieldPrice
	fieldQty
	fieldTimestamp
)

var errMalformed = errors.New("journal: malformed trade record")

func appendTrade(buf []byte, tr book.Trade) []byte {
	buf = protowire.AppendTag(buf, fieldSeq, protowire.VarintType)
	buf = protowire.AppendVarint(buf, tr.Seq)
	buf = protowire.AppendTag(buf, fieldBuyID, protowire.VarintType)
	buf = protowire.AppendVarint(buf, tr.BuyOrderID)
	buf = protowire.AppendTag(buf, fieldSellID, protowire.VarintType)
	buf = protowire.AppendVarint(buf, tr.SellOrderID)
	buf = protowire.AppendTag(buf, fieldPrice, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(tr.Price))
	buf = protowire.AppendTag(buf, fieldQty, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(tr.Qty))
	buf = protowire.AppendTag(buf, fieldTimestamp, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(tr.Timestamp))
	return buf
}

func decodeTrade(b []byte) (book.Trade, error) {
	var tr book.Trade

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return book.Trade{}, errMalformed
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return book.Trade{}, errMalformed
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return book.Trade{}, errMalformed
		}
		b = b[n:]

		switch num {
		case fieldSeq:
			tr.Seq = v
		case fieldBuyID:
			tr.BuyOrderID = v
		case fieldSellID:
			tr.SellOrderID = v
		case fieldPrice:
			tr.Price = int64(v)
		case fieldQty:
			tr.Qty = int64(v)
		case fieldTimestamp:
			tr.Timestamp = int64(v)
		}
	}
	return tr, nil
}
