package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ROC calculates the Rate of Change: the percentage move of the current
// value against the value period observations ago.
type ROC struct {
	period int
	index  int
	count  int
	buf    []decimal.Decimal
}

// NewROC creates a ROC with the given period.
func NewROC(period int) (*ROC, error) {
	if period < 1 {
		return nil, ErrInvalidParameter
	}
	return &ROC{
		period: period,
		buf:    make([]decimal.Decimal, period),
	}, nil
}

// NewDefaultROC creates a ROC with the conventional period of 9.
func NewDefaultROC() *ROC {
	r, _ := NewROC(DefaultROCPeriod)
	return r
}

// Period returns the lag length.
func (r *ROC) Period() int { return r.period }

// Next consumes one value and returns the rate of change in percent.
func (r *ROC) Next(input decimal.Decimal) decimal.Decimal {
	var previous decimal.Decimal
	if r.count > r.period {
		previous = r.buf[r.index]
	} else {
		r.count++
		if r.count == 1 {
			// no history yet: the change is measured against itself
			previous = input
		} else {
			// until the window first fills, the reference is the first
			// value ever seen, never a zero-filled slot
			previous = r.buf[0]
		}
	}
	r.buf[r.index] = input
	r.index = (r.index + 1) % r.period

	return input.Sub(previous).Div(previous).Mul(hundred)
}

// NextBar consumes the close price of a bar.
func (r *ROC) NextBar(bar Close) decimal.Decimal {
	return r.Next(bar.Close())
}

// Reset restores the post-construction state.
func (r *ROC) Reset() {
	r.index = 0
	r.count = 0
	for i := range r.buf {
		r.buf[i] = decimal.Zero
	}
}

func (r *ROC) String() string {
	return fmt.Sprintf("ROC(%d)", r.period)
}
