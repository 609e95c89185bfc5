package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EfficiencyRatio calculates Kaufman's Efficiency Ratio: the net price
// change across the window divided by the sum of the absolute bar-to-bar
// changes inside it. Values run from 0 (pure noise) to 1 (straight line).
// A perfectly flat window has zero volatility and reports 1.
//
// The denominator needs the window in chronological order, so Next walks
// the buffer in two spans around the cursor. That makes this the one
// indicator here that is O(period) per call rather than O(1); the period
// is a small fixed constant, so the bound still holds per update.
type EfficiencyRatio struct {
	period int
	index  int
	count  int
	buf    []decimal.Decimal
}

// NewEfficiencyRatio creates an EfficiencyRatio with the given period.
func NewEfficiencyRatio(period int) (*EfficiencyRatio, error) {
	if period < 1 {
		return nil, ErrInvalidParameter
	}
	return &EfficiencyRatio{
		period: period,
		buf:    make([]decimal.Decimal, period),
	}, nil
}

// NewDefaultEfficiencyRatio creates an EfficiencyRatio with the
// conventional period of 14.
func NewDefaultEfficiencyRatio() *EfficiencyRatio {
	e, _ := NewEfficiencyRatio(DefaultEfficiencyRatioPeriod)
	return e
}

// Period returns the window length.
func (e *EfficiencyRatio) Period() int { return e.period }

// Next consumes one value and returns the updated ratio.
func (e *EfficiencyRatio) Next(input decimal.Decimal) decimal.Decimal {
	var first decimal.Decimal
	if e.count >= e.period {
		first = e.buf[e.index]
	} else {
		e.count++
		first = e.buf[0]
	}
	e.buf[e.index] = input
	e.index = (e.index + 1) % e.period

	// oldest→newest walk: the span after the cursor holds the older
	// values, the span before it the newer ones
	volatility := decimal.Zero
	previous := first
	for _, v := range e.buf[e.index:e.count] {
		volatility = volatility.Add(previous.Sub(v).Abs())
		previous = v
	}
	for _, v := range e.buf[:e.index] {
		volatility = volatility.Add(previous.Sub(v).Abs())
		previous = v
	}

	if volatility.IsZero() {
		return one
	}
	return first.Sub(input).Abs().Div(volatility)
}

// NextBar consumes the close price of a bar.
func (e *EfficiencyRatio) NextBar(bar Close) decimal.Decimal {
	return e.Next(bar.Close())
}

// Reset restores the post-construction state.
func (e *EfficiencyRatio) Reset() {
	e.index = 0
	e.count = 0
	for i := range e.buf {
		e.buf[i] = decimal.Zero
	}
}

func (e *EfficiencyRatio) String() string {
	return fmt.Sprintf("ER(%d)", e.period)
}
