// Package model defines the records exchanged between the bar feed, the
// indicator engine and the stores: the immutable Bar observation and the
// IndicatorUpdate outputs published downstream.
package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrBarIncomplete is returned by Build when a required price or
	// volume field was never set.
	ErrBarIncomplete = errors.New("model: bar is missing required fields")

	// ErrBarInvalid is returned by Build when the fields are inconsistent:
	// low above any other price, high below any other price, or a
	// negative volume.
	ErrBarInvalid = errors.New("model: bar fields are inconsistent")
)

// Bar is one immutable OHLCV observation for a single symbol. Bars are
// built only through BarBuilder, which enforces completeness and price
// ordering; indicators therefore never need to re-validate input. All
// prices and the volume are exact decimals.
type Bar struct {
	symbol string
	ts     time.Time
	open   decimal.Decimal
	high   decimal.Decimal
	low    decimal.Decimal
	close  decimal.Decimal
	volume decimal.Decimal
}

// Symbol returns the instrument identifier, "" if the feed did not set one.
func (b Bar) Symbol() string { return b.symbol }

// Timestamp returns the bar's time, the zero time if not set.
func (b Bar) Timestamp() time.Time { return b.ts }

// Open returns the opening price.
func (b Bar) Open() decimal.Decimal { return b.open }

// High returns the highest price.
func (b Bar) High() decimal.Decimal { return b.high }

// Low returns the lowest price.
func (b Bar) Low() decimal.Decimal { return b.low }

// Close returns the closing price.
func (b Bar) Close() decimal.Decimal { return b.close }

// Volume returns the traded volume.
func (b Bar) Volume() decimal.Decimal { return b.volume }

// BarBuilder assembles a Bar field by field. Open, high, low, close and
// volume are required; symbol and timestamp are optional.
type BarBuilder struct {
	bar Bar

	hasOpen   bool
	hasHigh   bool
	hasLow    bool
	hasClose  bool
	hasVolume bool
}

// NewBarBuilder creates an empty builder.
func NewBarBuilder() *BarBuilder {
	return &BarBuilder{}
}

// Symbol sets the instrument identifier.
func (bb *BarBuilder) Symbol(symbol string) *BarBuilder {
	bb.bar.symbol = symbol
	return bb
}

// Timestamp sets the bar time.
func (bb *BarBuilder) Timestamp(ts time.Time) *BarBuilder {
	bb.bar.ts = ts
	return bb
}

// Open sets the opening price.
func (bb *BarBuilder) Open(v decimal.Decimal) *BarBuilder {
	bb.bar.open = v
	bb.hasOpen = true
	return bb
}

// High sets the highest price.
func (bb *BarBuilder) High(v decimal.Decimal) *BarBuilder {
	bb.bar.high = v
	bb.hasHigh = true
	return bb
}

// Low sets the lowest price.
func (bb *BarBuilder) Low(v decimal.Decimal) *BarBuilder {
	bb.bar.low = v
	bb.hasLow = true
	return bb
}

// Close sets the closing price.
func (bb *BarBuilder) Close(v decimal.Decimal) *BarBuilder {
	bb.bar.close = v
	bb.hasClose = true
	return bb
}

// Volume sets the traded volume.
func (bb *BarBuilder) Volume(v decimal.Decimal) *BarBuilder {
	bb.bar.volume = v
	bb.hasVolume = true
	return bb
}

// Build validates and returns the bar. The invariant enforced here is
// low ≤ {open, close, high}, high ≥ {open, close}, volume ≥ 0.
func (bb *BarBuilder) Build() (Bar, error) {
	if !bb.hasOpen || !bb.hasHigh || !bb.hasLow || !bb.hasClose || !bb.hasVolume {
		return Bar{}, ErrBarIncomplete
	}

	b := bb.bar
	valid := b.low.LessThanOrEqual(b.open) &&
		b.low.LessThanOrEqual(b.close) &&
		b.low.LessThanOrEqual(b.high) &&
		b.high.GreaterThanOrEqual(b.open) &&
		b.high.GreaterThanOrEqual(b.close) &&
		b.volume.Sign() >= 0
	if !valid {
		return Bar{}, ErrBarInvalid
	}

	return b, nil
}
