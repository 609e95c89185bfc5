package ta

import "github.com/shopspring/decimal"

// TrueRange measures the full extent a price moved over one bar, counting
// gaps against the previous close. Not windowed; the only state is the
// remembered previous close.
type TrueRange struct {
	prevClose decimal.Decimal
	hasPrev   bool
}

// NewTrueRange creates a TrueRange.
func NewTrueRange() *TrueRange {
	return &TrueRange{}
}

// Next is the single-price-stream form: the absolute change against the
// previous value, 0 on the first call.
func (t *TrueRange) Next(input decimal.Decimal) decimal.Decimal {
	distance := decimal.Zero
	if t.hasPrev {
		distance = input.Sub(t.prevClose).Abs()
	}
	t.prevClose = input
	t.hasPrev = true
	return distance
}

// NextBar returns max(high−low, |high−prev close|, |low−prev close|).
// The first bar, with no previous close, reports high−low.
func (t *TrueRange) NextBar(bar HighLowClose) decimal.Decimal {
	var distance decimal.Decimal
	if t.hasPrev {
		distance = max3(
			bar.High().Sub(bar.Low()),
			bar.High().Sub(t.prevClose).Abs(),
			bar.Low().Sub(t.prevClose).Abs(),
		)
	} else {
		distance = bar.High().Sub(bar.Low())
	}
	t.prevClose = bar.Close()
	t.hasPrev = true
	return distance
}

// Reset restores the post-construction state.
func (t *TrueRange) Reset() {
	t.prevClose = decimal.Zero
	t.hasPrev = false
}

func (t *TrueRange) String() string {
	return "TRUE_RANGE()"
}
