package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StdDev calculates the population standard deviation of the last period
// inputs with a Welford-style incremental update. Two formulas cover the
// two phases: the classic growing-count update while the buffer fills, and
// a combined add-new/remove-evicted update once it is full. Both keep the
// running mean and sum of squared deviations without rescanning the window.
type StdDev struct {
	period int
	index  int
	count  int
	mean   decimal.Decimal
	m2     decimal.Decimal // running sum of squared deviations
	buf    []decimal.Decimal
}

// NewStdDev creates a StdDev with the given period.
func NewStdDev(period int) (*StdDev, error) {
	if period < 1 {
		return nil, ErrInvalidParameter
	}
	return &StdDev{
		period: period,
		buf:    make([]decimal.Decimal, period),
	}, nil
}

// NewDefaultStdDev creates a StdDev with the conventional period of 9.
func NewDefaultStdDev() *StdDev {
	s, _ := NewStdDev(DefaultStdDevPeriod)
	return s
}

// Period returns the window length.
func (s *StdDev) Period() int { return s.period }

// Next consumes one value and returns the standard deviation of the
// retained window.
func (s *StdDev) Next(input decimal.Decimal) decimal.Decimal {
	old := s.buf[s.index]
	s.buf[s.index] = input
	s.index = (s.index + 1) % s.period

	if s.count < s.period {
		s.count++
		delta := input.Sub(s.mean)
		s.mean = s.mean.Add(delta.Div(decimal.NewFromInt(int64(s.count))))
		delta2 := input.Sub(s.mean)
		s.m2 = s.m2.Add(delta.Mul(delta2))
	} else {
		delta := input.Sub(old)
		oldMean := s.mean
		s.mean = s.mean.Add(delta.Div(decimal.NewFromInt(int64(s.period))))
		delta2 := input.Sub(s.mean).Add(old.Sub(oldMean))
		s.m2 = s.m2.Add(delta.Mul(delta2))
	}

	// division round-off can leave m2 a hair below zero on flat windows;
	// clamp before the square root
	if s.m2.Sign() < 0 {
		s.m2 = decimal.Zero
	}

	return sqrt(s.m2.Div(decimal.NewFromInt(int64(s.count))))
}

// NextBar consumes the close price of a bar.
func (s *StdDev) NextBar(bar Close) decimal.Decimal {
	return s.Next(bar.Close())
}

// Mean reports the running mean as of the last Next call. Bollinger Bands
// reads it so the band centre costs nothing extra.
func (s *StdDev) Mean() decimal.Decimal {
	return s.mean
}

// Reset restores the post-construction state.
func (s *StdDev) Reset() {
	s.index = 0
	s.count = 0
	s.mean = decimal.Zero
	s.m2 = decimal.Zero
	for i := range s.buf {
		s.buf[i] = decimal.Zero
	}
}

func (s *StdDev) String() string {
	return fmt.Sprintf("SD(%d)", s.period)
}
