package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EMA calculates the Exponential Moving Average with smoothing factor
// k = 2/(period+1). O(1) state, no window storage. The very first input
// seeds the running value unsmoothed to avoid a biased cold start.
type EMA struct {
	period  int
	k       decimal.Decimal
	current decimal.Decimal
	isNew   bool
}

// NewEMA creates an EMA with the given period.
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, ErrInvalidParameter
	}
	return &EMA{
		period: period,
		k:      two.Div(decimal.NewFromInt(int64(period + 1))),
		isNew:  true,
	}, nil
}

// NewDefaultEMA creates an EMA with the conventional period of 9.
func NewDefaultEMA() *EMA {
	e, _ := NewEMA(DefaultEMAPeriod)
	return e
}

// Period returns the smoothing period.
func (e *EMA) Period() int { return e.period }

// Next consumes one value and returns the updated average.
func (e *EMA) Next(input decimal.Decimal) decimal.Decimal {
	if e.isNew {
		e.isNew = false
		e.current = input
	} else {
		e.current = e.k.Mul(input).Add(one.Sub(e.k).Mul(e.current))
	}
	return e.current
}

// NextBar consumes the close price of a bar.
func (e *EMA) NextBar(bar Close) decimal.Decimal {
	return e.Next(bar.Close())
}

// Reset restores the post-construction state.
func (e *EMA) Reset() {
	e.current = decimal.Zero
	e.isNew = true
}

func (e *EMA) String() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}
