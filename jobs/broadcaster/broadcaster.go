package broadcaster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"hermes/infra/journal"
)

// Broadcaster drains the trade journal's outbox to Kafka. Records are
// marked SENT before the attempt and ACKED after broker confirmation,
// so a crash between the two only ever causes redelivery, never loss.
type Broadcaster struct {
	journal  *journal.Journal
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

// Event is the published trade payload.
type Event struct {
	V      int    `json:"v"`
	Seq    uint64 `json:"seq"`
	BuyID  uint64 `json:"buy_id"`
	SellID uint64 `json:"sell_id"`
	Price  int64  `json:"price"`
	Qty    int64  `json:"qty"`
	Time   int64  `json:"ts"`
}

func New(j *journal.Journal, brokers []string, topic string, interval time.Duration, log *zap.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Broadcaster{
		journal:  j,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Run scans for unpublished trades on a fixed tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", zap.String("topic", b.topic))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.publishPending()
		}
	}
}

func (b *Broadcaster) publishPending() {
	err := b.journal.ScanPending(func(rec journal.Record) error {
		if err := b.journal.MarkSent(rec.Trade.Seq); err != nil {
			return err
		}

		payload, err := json.Marshal(Event{
			V:      1,
			Seq:    rec.Trade.Seq,
			BuyID:  rec.Trade.BuyOrderID,
			SellID: rec.Trade.SellOrderID,
			Price:  rec.Trade.Price,
			Qty:    rec.Trade.Qty,
			Time:   rec.Trade.Timestamp,
		})
		if err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Value: sarama.ByteEncoder(payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Left in SENT; retried on the next tick.
			b.log.Warn("trade publish failed",
				zap.Uint64("seq", rec.Trade.Seq),
				zap.Error(err),
			)
			return nil
		}

		return b.journal.MarkAcked(rec.Trade.Seq)
	})
	if err != nil {
		b.log.Error("outbox scan failed", zap.Error(err))
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
