package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MACDOutput is the oscillator triple produced on every update.
type MACDOutput struct {
	MACD      decimal.Decimal
	Signal    decimal.Decimal
	Histogram decimal.Decimal
}

// MACD runs fast and slow EMAs over the same input; their difference is
// the oscillator line, a third EMA of that line is the signal, and the
// histogram is the gap between them. All three periods are validated
// independently.
type MACD struct {
	fastEMA   EMA
	slowEMA   EMA
	signalEMA EMA
}

// NewMACD creates a MACD with the given fast, slow and signal periods.
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	fast, err := NewEMA(fastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := NewEMA(slowPeriod)
	if err != nil {
		return nil, err
	}
	signal, err := NewEMA(signalPeriod)
	if err != nil {
		return nil, err
	}
	return &MACD{
		fastEMA:   *fast,
		slowEMA:   *slow,
		signalEMA: *signal,
	}, nil
}

// NewDefaultMACD creates a MACD with the conventional 12/26/9 periods.
func NewDefaultMACD() *MACD {
	m, _ := NewMACD(DefaultMACDFastPeriod, DefaultMACDSlowPeriod, DefaultMACDSignalPeriod)
	return m
}

// Next consumes one value and returns the updated triple.
func (m *MACD) Next(input decimal.Decimal) MACDOutput {
	fastVal := m.fastEMA.Next(input)
	slowVal := m.slowEMA.Next(input)

	macd := fastVal.Sub(slowVal)
	signal := m.signalEMA.Next(macd)
	histogram := macd.Sub(signal)

	return MACDOutput{
		MACD:      macd,
		Signal:    signal,
		Histogram: histogram,
	}
}

// NextBar consumes the close price of a bar.
func (m *MACD) NextBar(bar Close) MACDOutput {
	return m.Next(bar.Close())
}

// Reset restores the post-construction state of all three EMAs.
func (m *MACD) Reset() {
	m.fastEMA.Reset()
	m.slowEMA.Reset()
	m.signalEMA.Reset()
}

func (m *MACD) String() string {
	return fmt.Sprintf("MACD(%d, %d, %d)",
		m.fastEMA.Period(), m.slowEMA.Period(), m.signalEMA.Period())
}
