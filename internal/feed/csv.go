// Package feed reads historical OHLCV bars from a CSV file and emits them
// into the pipeline at configurable speed, simulating a live bar stream.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/internal/model"
	"tastreamv1/internal/ringbuf"
)

// CSVSource replays bars from a CSV file with a header row. Recognized
// columns: ts (RFC3339), symbol, open, high, low, close, volume. Column
// order is free; symbol is optional and falls back to the configured one.
type CSVSource struct {
	path   string
	symbol string // fallback when the file has no symbol column

	// OnSkip is called for every malformed row skipped (for metrics).
	OnSkip func()
}

// New creates a CSVSource for the given file.
func New(path, fallbackSymbol string) *CSVSource {
	return &CSVSource{path: path, symbol: fallbackSymbol}
}

// Run reads the file and pushes every bar into ring. speed controls pacing:
// 1.0 = real-time gaps between bar timestamps, 0 = as fast as possible.
// Malformed rows are skipped with a log line; a full ring is retried until
// the consumer drains it or ctx is cancelled.
func (s *CSVSource) Run(ctx context.Context, ring *ringbuf.Ring, speed float64) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("feed: open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("feed: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return fmt.Errorf("feed: header missing %q column", required)
		}
	}

	var (
		prevTS  time.Time
		emitted int
		skipped int
		line    = 1
	)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[feed] cancelled after %d bars", emitted)
			return ctx.Err()
		default:
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("[feed] line %d: %v, skipping", line, err)
			skipped++
			if s.OnSkip != nil {
				s.OnSkip()
			}
			continue
		}

		bar, ts, err := s.parseRecord(record, cols)
		if err != nil {
			log.Printf("[feed] line %d: %v, skipping", line, err)
			skipped++
			if s.OnSkip != nil {
				s.OnSkip()
			}
			continue
		}

		// Simulate time gaps between bars
		if speed > 0 && !prevTS.IsZero() && !ts.IsZero() {
			gap := ts.Sub(prevTS)
			if gap > 0 {
				scaledGap := time.Duration(float64(gap) / speed)
				if scaledGap > 5*time.Second {
					scaledGap = 5 * time.Second
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(scaledGap):
				}
			}
		}
		prevTS = ts

		for !ring.Push(bar) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
		emitted++
	}

	log.Printf("[feed] done: %d bars emitted, %d rows skipped", emitted, skipped)
	return nil
}

func (s *CSVSource) parseRecord(record []string, cols map[string]int) (model.Bar, time.Time, error) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	price := func(name string) (decimal.Decimal, error) {
		v, ok := field(name)
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("missing %s", name)
		}
		return decimal.NewFromString(v)
	}

	var ts time.Time
	if v, ok := field("ts"); ok && v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return model.Bar{}, time.Time{}, fmt.Errorf("bad ts %q: %w", v, err)
		}
		ts = parsed
	}

	symbol := s.symbol
	if v, ok := field("symbol"); ok && v != "" {
		symbol = v
	}

	bb := model.NewBarBuilder().Symbol(symbol).Timestamp(ts)
	for name, set := range map[string]func(decimal.Decimal) *model.BarBuilder{
		"open":   bb.Open,
		"high":   bb.High,
		"low":    bb.Low,
		"close":  bb.Close,
		"volume": bb.Volume,
	} {
		v, err := price(name)
		if err != nil {
			return model.Bar{}, time.Time{}, err
		}
		set(v)
	}

	bar, err := bb.Build()
	if err != nil {
		return model.Bar{}, time.Time{}, err
	}
	return bar, ts, nil
}
