package redis

import (
	"context"
	"log"
	"sync"

	"tastreamv1/internal/model"
)

// BufferedWriter wraps a Redis Writer with a circuit breaker.
// During circuit-open state, updates are buffered locally and flushed
// when the circuit closes again.
type BufferedWriter struct {
	writer *Writer
	cb     *CircuitBreaker
	ctx    context.Context

	mu     sync.Mutex
	buffer []*model.IndicatorUpdate
	maxBuf int // max buffered updates before dropping oldest (default: 10000)

	// Callbacks
	OnBuffer func()          // called when an update is buffered (for metrics)
	OnFlush  func(count int) // called after flushing buffered updates
}

// NewBufferedWriter creates a BufferedWriter wrapping the given Writer.
func NewBufferedWriter(ctx context.Context, w *Writer, cb *CircuitBreaker, maxBufferSize int) *BufferedWriter {
	if maxBufferSize <= 0 {
		maxBufferSize = 10000
	}
	bw := &BufferedWriter{
		writer: w,
		cb:     cb,
		ctx:    ctx,
		buffer: make([]*model.IndicatorUpdate, 0, 256),
		maxBuf: maxBufferSize,
	}

	// Register flush on circuit close
	prevCallback := cb.OnStateChange
	cb.OnStateChange = func(from, to State) {
		if prevCallback != nil {
			prevCallback(from, to)
		}
		if to == StateClosed {
			go bw.flush()
		}
	}

	return bw
}

// WriteUpdate writes an indicator update through the circuit breaker.
// If the circuit is open, the update is buffered locally.
func (bw *BufferedWriter) WriteUpdate(u *model.IndicatorUpdate) error {
	err := bw.cb.Execute(func() error {
		return bw.writer.writeUpdate(bw.ctx, u)
	})
	if err == ErrCircuitOpen {
		bw.bufferUpdate(u)
		return nil // buffered, not lost
	}
	return err
}

func (bw *BufferedWriter) bufferUpdate(u *model.IndicatorUpdate) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if len(bw.buffer) >= bw.maxBuf {
		// Buffer full — drop oldest
		bw.buffer = bw.buffer[1:]
	}
	bw.buffer = append(bw.buffer, u)

	if bw.OnBuffer != nil {
		bw.OnBuffer()
	}
}

// flush replays all buffered updates through the underlying writer.
func (bw *BufferedWriter) flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}
	// Take ownership of the buffer
	toFlush := bw.buffer
	bw.buffer = make([]*model.IndicatorUpdate, 0, 256)
	bw.mu.Unlock()

	if err := bw.writer.WriteUpdateBatch(bw.ctx, toFlush); err != nil {
		log.Printf("[buffered-writer] flush error: %v", err)
		return
	}

	log.Printf("[buffered-writer] flushed %d buffered updates", len(toFlush))
	if bw.OnFlush != nil {
		bw.OnFlush(len(toFlush))
	}
}

// PendingCount returns the number of buffered updates waiting to be flushed.
func (bw *BufferedWriter) PendingCount() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}
