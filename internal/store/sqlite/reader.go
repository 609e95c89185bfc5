package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Reader provides read-only access to SQLite for warm-up backfill.
type Reader struct {
	db *sql.DB
}

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	log.Printf("[sqlite-reader] opened %s", dbPath)
	return &Reader{db: db}, nil
}

// ReadBars reads stored bars for a symbol after the given Unix timestamp,
// ordered ascending for correct replay order.
func (r *Reader) ReadBars(symbol string, afterTS int64) ([]model.Bar, error) {
	rows, err := r.db.Query(`
		SELECT symbol, ts, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND ts > ?
		ORDER BY ts ASC
	`, symbol, afterTS)
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars: %w", err)
	}
	defer rows.Close()
	return scanBars(rows)
}

// ReadRecentBars reads the most recent limit bars for a symbol, returned in
// ascending timestamp order so they can be replayed through an indicator.
func (r *Reader) ReadRecentBars(symbol string, limit int) ([]model.Bar, error) {
	rows, err := r.db.Query(`
		SELECT symbol, ts, open, high, low, close, volume
		FROM (
			SELECT symbol, ts, open, high, low, close, volume
			FROM bars
			WHERE symbol = ?
			ORDER BY ts DESC
			LIMIT ?
		)
		ORDER BY ts ASC
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query recent bars: %w", err)
	}
	defer rows.Close()
	return scanBars(rows)
}

// Symbols returns the distinct symbols present in the bars table.
func (r *Reader) Symbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT symbol FROM bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("sqlite scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func scanBars(rows *sql.Rows) ([]model.Bar, error) {
	var bars []model.Bar
	for rows.Next() {
		var (
			symbol                         string
			tsUnix                         int64
			open, high, low, close, volume string
		)
		if err := rows.Scan(&symbol, &tsUnix, &open, &high, &low, &close, &volume); err != nil {
			return nil, fmt.Errorf("sqlite scan bars: %w", err)
		}
		bar, err := buildBar(symbol, tsUnix, open, high, low, close, volume)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// buildBar reassembles a validated Bar from its stored decimal strings.
func buildBar(symbol string, tsUnix int64, open, high, low, close, volume string) (model.Bar, error) {
	bb := model.NewBarBuilder().
		Symbol(symbol).
		Timestamp(time.Unix(tsUnix, 0).UTC())
	for _, f := range []struct {
		raw string
		set func(decimal.Decimal) *model.BarBuilder
	}{
		{open, bb.Open}, {high, bb.High}, {low, bb.Low}, {close, bb.Close}, {volume, bb.Volume},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return model.Bar{}, fmt.Errorf("sqlite decode price %q: %w", f.raw, err)
		}
		f.set(v)
	}
	bar, err := bb.Build()
	if err != nil {
		return model.Bar{}, fmt.Errorf("sqlite stored bar invalid: %w", err)
	}
	return bar, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
