package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the daemon reads from the environment.
// Kafka jobs stay disabled when no brokers are configured.
type Config struct {
	KafkaBrokers []string
	TradeTopic   string
	DepthTopic   string

	JournalDir string

	BroadcastInterval time.Duration
	DepthInterval     time.Duration
	ReclaimInterval   time.Duration
}

// Load reads .env if present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		TradeTopic:        getenv("TRADE_TOPIC", "trades"),
		DepthTopic:        getenv("DEPTH_TOPIC", "depth"),
		JournalDir:        getenv("JOURNAL_DIR", "./journal"),
		BroadcastInterval: getduration("BROADCAST_INTERVAL", 250*time.Millisecond),
		DepthInterval:     getduration("DEPTH_INTERVAL", 2*time.Second),
		ReclaimInterval:   getduration("RECLAIM_INTERVAL", 2*time.Second),
	}
}

// KafkaEnabled reports whether any broker is configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
