// Package ta provides incrementally-updatable technical indicators over
// exact decimal arithmetic.
//
// Every indicator consumes one observation per Next call and returns the
// updated value in O(1) time and O(period) memory, no matter how many
// observations the stream has carried. All arithmetic goes through
// shopspring/decimal so long-running streams don't accumulate
// floating-point drift.
//
// Indicators share the same three-operation protocol: advance (Next /
// NextBar), Reset back to the exact post-construction state, and a
// human-readable label via String (e.g. "EMA(9)", "BB(9, 2)"). Windowed
// indicators additionally report their Period.
//
// Instances are not safe for concurrent use; each one belongs to exactly
// one stream. Composite indicators (Bollinger Bands, Keltner Channel,
// MACD, PPO) own their sub-indicators by value and reset them as a unit.
package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Indicator is the uniform contract every indicator satisfies: feed one
// input, get one output, reset at will.
type Indicator[T, O any] interface {
	Next(input T) O
	Reset()
	fmt.Stringer
}

// BarIndicator is the same contract for the bar-consuming entry point.
// B is the capability set the indicator requires — the narrowest interface
// over {open, high, low, close, volume} it actually reads.
type BarIndicator[B, O any] interface {
	NextBar(bar B) O
	Reset()
	fmt.Stringer
}

// Periodic is implemented by indicators parameterized by a window or
// smoothing period. Non-windowed indicators (TrueRange, OBV) omit it.
type Periodic interface {
	Period() int
}

// Open reports the opening price of a bar.
type Open interface {
	Open() decimal.Decimal
}

// High reports the highest price of a bar.
type High interface {
	High() decimal.Decimal
}

// Low reports the lowest price of a bar.
type Low interface {
	Low() decimal.Decimal
}

// Close reports the closing price of a bar.
type Close interface {
	Close() decimal.Decimal
}

// Volume reports the traded volume of a bar.
type Volume interface {
	Volume() decimal.Decimal
}

// HighLowClose is the capability set required by range-based indicators
// (TrueRange, ATR, Keltner Channel). An indicator asks only for the fields
// it reads, so any bar type exposing these three getters will do.
type HighLowClose interface {
	High
	Low
	Close
}

// CloseVolume is the capability set required by volume-flow indicators
// (On-Balance Volume).
type CloseVolume interface {
	Close
	Volume
}
