package journal

import (
	"testing"

	"hermes/domain/book"
)

func sampleTrade(seq uint64) book.Trade {
	return book.Trade{
		Seq:         seq,
		BuyOrderID:  seq * 10,
		SellOrderID: seq*10 + 1,
		Price:       10500,
		Qty:         8,
		Timestamp:   1700000000000000000 + int64(seq),
	}
}

func TestAppendGetRoundtrip(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	want := sampleTrade(1)
	if err := j.Append(want); err != nil {
		t.Fatalf("append: %v", err)
	}

	rec, err := j.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.State != StateNew {
		t.Errorf("expected NEW, got %v", rec.State)
	}
	if rec.Trade != want {
		t.Errorf("trade mismatch: got %+v, want %+v", rec.Trade, want)
	}
}

func TestOutboxLifecycle(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	for seq := uint64(1); seq <= 3; seq++ {
		if err := j.Append(sampleTrade(seq)); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	pending := 0
	_ = j.ScanPending(func(rec Record) error {
		pending++
		return nil
	})
	if pending != 3 {
		t.Fatalf("expected 3 pending, got %d", pending)
	}

	if err := j.MarkSent(1); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := j.MarkAcked(2); err != nil {
		t.Fatalf("mark acked: %v", err)
	}

	var seen []uint64
	_ = j.ScanPending(func(rec Record) error {
		seen = append(seen, rec.Trade.Seq)
		return nil
	})
	// Acked record 2 is skipped; SENT record 1 stays pending for retry.
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("unexpected pending set: %v", seen)
	}

	if err := j.DeleteAcked(3); err != nil {
		t.Fatalf("delete acked: %v", err)
	}
	if _, err := j.Get(2); err == nil {
		t.Error("acked record should be gone after cleanup")
	}
	if _, err := j.Get(1); err != nil {
		t.Errorf("unacked record must survive cleanup: %v", err)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	buf := appendTrade(nil, sampleTrade(7))

	tr, err := decodeTrade(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr != sampleTrade(7) {
		t.Errorf("roundtrip mismatch: %+v", tr)
	}

	if _, err := decodeTrade([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error on malformed input")
	}
}
