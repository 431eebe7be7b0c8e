package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hermes/config"
	"hermes/domain/book"
	"hermes/engine"
	"hermes/infra/journal"
	"hermes/infra/kafka"
	"hermes/infra/logging"
	"hermes/infra/memory"
	"hermes/infra/sequence"
	"hermes/jobs/broadcaster"
	"hermes/jobs/depthfeed"
	"hermes/service"
	"hermes/snapshot"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// ---------------- Journal ----------------

	jnl, err := journal.Open(cfg.JournalDir)
	if err != nil {
		logger.Fatal("journal open failed", zap.Error(err))
	}
	defer jnl.Close()

	// ---------------- Memory ----------------

	pool := memory.NewPool(func() *book.Order {
		return &book.Order{}
	})
	ring := memory.NewRetireRing(1 << 18)
	reader := snapshot.NewReader()

	// ---------------- Domain ----------------

	seq := sequence.New(0)
	b := book.NewOrderBook(seq, ring)

	// ---------------- Engine + Service ----------------

	sink := &service.JournalSink{Journal: jnl, Log: logger}
	eng := engine.New(b, sink, logger)
	svc := service.New(b, eng, pool, ring, reader, logger)

	svc.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartReclaimJob(ctx, cfg.ReclaimInterval)

	// ---------------- Background Jobs ----------------

	if cfg.KafkaEnabled() {
		bc, err := broadcaster.New(jnl, cfg.KafkaBrokers, cfg.TradeTopic, cfg.BroadcastInterval, logger)
		if err != nil {
			logger.Fatal("broadcaster init failed", zap.Error(err))
		}
		defer bc.Close()
		go bc.Run(ctx)

		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.DepthTopic)
		defer producer.Close()
		go depthfeed.New(svc, producer, cfg.DepthInterval, logger).Run(ctx)
	} else {
		logger.Info("no Kafka brokers configured, publish jobs disabled")
	}

	logger.Info("engine running",
		zap.String("journal", cfg.JournalDir),
		zap.Bool("kafka", cfg.KafkaEnabled()),
	)

	// ---------------- Shutdown ----------------

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	svc.Stop() // drains everything already submitted

	logger.Info("shutdown complete",
		zap.Int("trades", len(svc.Trades())),
		zap.Int("resting_bids", svc.BidCount()),
		zap.Int("resting_asks", svc.AskCount()),
	)
}
