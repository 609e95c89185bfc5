package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SMA calculates the Simple Moving Average over the last period inputs.
// A preallocated circular buffer plus a running sum keep Next at O(1):
// the evicted slot value is subtracted, the new value added, never a
// rescan of the window.
type SMA struct {
	period int
	index  int
	count  int
	sum    decimal.Decimal
	buf    []decimal.Decimal
}

// NewSMA creates an SMA with the given period.
func NewSMA(period int) (*SMA, error) {
	if period < 1 {
		return nil, ErrInvalidParameter
	}
	return &SMA{
		period: period,
		buf:    make([]decimal.Decimal, period),
	}, nil
}

// NewDefaultSMA creates an SMA with the conventional period of 9.
func NewDefaultSMA() *SMA {
	s, _ := NewSMA(DefaultSMAPeriod)
	return s
}

// Period returns the window length.
func (s *SMA) Period() int { return s.period }

// Next consumes one value and returns the mean of the retained window.
// Until the buffer first fills, the divisor is the number of values seen
// so far; afterwards it is the period.
func (s *SMA) Next(input decimal.Decimal) decimal.Decimal {
	old := s.buf[s.index]
	s.buf[s.index] = input
	s.index = (s.index + 1) % s.period

	if s.count < s.period {
		s.count++
	}

	s.sum = s.sum.Sub(old).Add(input)
	return s.sum.Div(decimal.NewFromInt(int64(s.count)))
}

// NextBar consumes the close price of a bar.
func (s *SMA) NextBar(bar Close) decimal.Decimal {
	return s.Next(bar.Close())
}

// Reset restores the post-construction state.
func (s *SMA) Reset() {
	s.index = 0
	s.count = 0
	s.sum = decimal.Zero
	for i := range s.buf {
		s.buf[i] = decimal.Zero
	}
}

func (s *SMA) String() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}
