package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tastreamv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultBatchSize  = 100
	defaultFlushDelay = 200 * time.Millisecond
)

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/bars.db"
}

// Writer is a single-goroutine SQLite writer with transaction batching.
// Prices are stored as decimal strings so nothing is lost to float rounding.
type Writer struct {
	db *sql.DB

	// OnCommit is called with the elapsed time of each batch commit (for metrics).
	OnCommit func(d time.Duration)
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Writer{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			open   TEXT    NOT NULL,
			high   TEXT    NOT NULL,
			low    TEXT    NOT NULL,
			close  TEXT    NOT NULL,
			volume TEXT    NOT NULL,
			PRIMARY KEY (symbol, ts)
		);

		CREATE TABLE IF NOT EXISTS indicator_values (
			name       TEXT    NOT NULL,
			symbol     TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			value      TEXT    NOT NULL,
			components TEXT,
			warm       INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (name, symbol, ts)
		);
	`)
	return err
}

// RunBars reads bars from barCh and inserts them in batched transactions.
// Flushes every batchSize bars OR every flushDelay, whichever first.
// Blocks until ctx is cancelled or barCh is closed.
func (w *Writer) RunBars(ctx context.Context, barCh <-chan model.Bar) {
	batch := make([]model.Bar, 0, defaultBatchSize)
	timer := time.NewTimer(defaultFlushDelay)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := w.insertBarBatch(batch); err != nil {
			log.Printf("[sqlite] bar batch insert error: %v", err)
		} else {
			log.Printf("[sqlite] committed %d bars in %v", len(batch), time.Since(start))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case bar, ok := <-barCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, bar)
			if len(batch) >= defaultBatchSize {
				flush()
				timer.Reset(defaultFlushDelay)
			}

		case <-timer.C:
			flush()
			timer.Reset(defaultFlushDelay)
		}
	}
}

// insertBarBatch inserts a batch of bars in a single transaction.
func (w *Writer) insertBarBatch(bars []model.Bar) error {
	start := time.Now()
	defer w.observeCommit(start)

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO bars (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(
			b.Symbol(), b.Timestamp().Unix(),
			b.Open().String(), b.High().String(), b.Low().String(),
			b.Close().String(), b.Volume().String(),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// RunUpdates reads indicator updates from updateCh and inserts them in
// batched transactions, same flush policy as RunBars.
func (w *Writer) RunUpdates(ctx context.Context, updateCh <-chan *model.IndicatorUpdate) {
	batch := make([]*model.IndicatorUpdate, 0, defaultBatchSize)
	timer := time.NewTimer(defaultFlushDelay)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.insertUpdateBatch(batch); err != nil {
			log.Printf("[sqlite] update batch insert error: %v", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case u, ok := <-updateCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, u)
			if len(batch) >= defaultBatchSize {
				flush()
				timer.Reset(defaultFlushDelay)
			}
		case <-timer.C:
			flush()
			timer.Reset(defaultFlushDelay)
		}
	}
}

// insertUpdateBatch inserts a batch of indicator updates in a single transaction.
// Components are stored as a JSON object, NULL when absent.
func (w *Writer) insertUpdateBatch(updates []*model.IndicatorUpdate) error {
	start := time.Now()
	defer w.observeCommit(start)

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO indicator_values (name, symbol, ts, value, components, warm)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, u := range updates {
		var components any
		if len(u.Components) > 0 {
			data, err := json.Marshal(u.Components)
			if err != nil {
				tx.Rollback()
				return err
			}
			components = string(data)
		}
		warm := 0
		if u.Warm {
			warm = 1
		}
		_, err := stmt.Exec(u.Name, u.Symbol, u.TS.Unix(), u.Value.String(), components, warm)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (w *Writer) observeCommit(start time.Time) {
	if w.OnCommit != nil {
		w.OnCommit(time.Since(start))
	}
}

// GetLastTimestamp returns the last stored bar timestamp for a symbol.
// Returns 0 if no bars exist.
func (w *Writer) GetLastTimestamp(symbol string) (int64, error) {
	var ts sql.NullInt64
	err := w.db.QueryRow(
		`SELECT MAX(ts) FROM bars WHERE symbol = ?`,
		symbol,
	).Scan(&ts)
	if err != nil {
		return 0, err
	}
	if !ts.Valid {
		return 0, nil
	}
	return ts.Int64, nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
