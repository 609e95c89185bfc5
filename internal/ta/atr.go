package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ATR smooths the TrueRange series with an EMA of the given period. Both
// sub-indicators are owned by value and reset as a unit.
type ATR struct {
	tr  TrueRange
	ema EMA
}

// NewATR creates an ATR with the given EMA period.
func NewATR(period int) (*ATR, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}
	return &ATR{ema: *ema}, nil
}

// NewDefaultATR creates an ATR with the conventional period of 14.
func NewDefaultATR() *ATR {
	a, _ := NewATR(DefaultATRPeriod)
	return a
}

// Period returns the smoothing period.
func (a *ATR) Period() int { return a.ema.Period() }

// Next consumes a bare price; the true range degenerates to the absolute
// change between successive calls.
func (a *ATR) Next(input decimal.Decimal) decimal.Decimal {
	return a.ema.Next(a.tr.Next(input))
}

// NextBar consumes a full bar with high, low and close.
func (a *ATR) NextBar(bar HighLowClose) decimal.Decimal {
	return a.ema.Next(a.tr.NextBar(bar))
}

// Reset restores the post-construction state of both sub-indicators.
func (a *ATR) Reset() {
	a.tr.Reset()
	a.ema.Reset()
}

func (a *ATR) String() string {
	return fmt.Sprintf("ATR(%d)", a.ema.Period())
}
