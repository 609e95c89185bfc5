package redis

import (
	"context"
	"fmt"
	"log"
	"time"
	"unsafe"

	"tastreamv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// Stream trimming: roughly a trading day of 1m updates + buffer
	streamMaxLen     = 500
	defaultLatestTTL = 30 * time.Minute
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Writer publishes indicator updates to Redis: one stream per indicator and
// symbol, a "latest" key for quick reads, and a pub/sub channel for live
// subscribers.
type Writer struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client}, nil
}

// WriteUpdateBatch writes multiple indicator updates in a single Redis pipeline.
// This batches XADD + SET + PUBLISH for all updates into one network roundtrip.
// Optimized: []byte→string zero-copy, no fmt.Sprintf.
func (w *Writer) WriteUpdateBatch(ctx context.Context, updates []*model.IndicatorUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	pipe := w.client.Pipeline()
	for _, u := range updates {
		jsonBytes := u.JSON()
		// Zero-copy []byte→string (safe: jsonBytes is not mutated after this)
		jsonData := *(*string)(unsafe.Pointer(&jsonBytes))
		queueUpdate(ctx, pipe, u, jsonData)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("redis update batch (%d updates): %w", len(updates), err)
	}
	return nil
}

// writeUpdate publishes one indicator update: XADD + SET latest + PUBLISH.
func (w *Writer) writeUpdate(ctx context.Context, u *model.IndicatorUpdate) error {
	jsonBytes := u.JSON()
	jsonData := *(*string)(unsafe.Pointer(&jsonBytes))

	pipe := w.client.Pipeline()
	queueUpdate(ctx, pipe, u, jsonData)
	_, err := pipe.Exec(ctx)
	return err
}

func queueUpdate(ctx context.Context, pipe goredis.Pipeliner, u *model.IndicatorUpdate, jsonData string) {
	// XADD to indicator stream with auto-trimming
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: u.StreamKey(),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": jsonData},
	})

	// SET latest value with TTL
	latestKey := "ind:" + u.Name + ":latest:" + u.Symbol
	pipe.Set(ctx, latestKey, jsonData, defaultLatestTTL)

	// PUBLISH for real-time subscribers (dashboard)
	pipe.Publish(ctx, u.PubSubChannel(), jsonData)
}

// Close closes the Redis client.
func (w *Writer) Close() error {
	return w.client.Close()
}
