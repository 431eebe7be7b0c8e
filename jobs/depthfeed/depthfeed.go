package depthfeed

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"hermes/infra/kafka"
	"hermes/snapshot"
)

// DepthSource yields a consistent snapshot of resting liquidity.
type DepthSource interface {
	Depth() snapshot.Depth
}

// Publisher periodically publishes depth snapshots as JSON.
type Publisher struct {
	src      DepthSource
	producer *kafka.Producer
	interval time.Duration
	log      *zap.Logger
}

func New(src DepthSource, producer *kafka.Producer, interval time.Duration, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		src:      src,
		producer: producer,
		interval: interval,
		log:      log,
	}
}

// Run publishes one snapshot per tick until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	p.log.Info("depth feed started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishOnce(ctx)
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) {
	snap := p.src.Depth()

	payload, err := json.Marshal(snap)
	if err != nil {
		p.log.Error("depth marshal failed", zap.Error(err))
		return
	}
	if err := p.producer.Send(ctx, nil, payload); err != nil {
		p.log.Warn("depth publish failed", zap.Error(err))
	}
}
