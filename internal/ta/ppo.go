package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PPOOutput is the oscillator triple produced on every update.
type PPOOutput struct {
	PPO       decimal.Decimal
	Signal    decimal.Decimal
	Histogram decimal.Decimal
}

// PPO is the Percentage Price Oscillator: the same wiring as MACD, with
// the oscillator line normalized by the slow EMA,
// (fast−slow)/slow × 100. All three periods are validated independently.
type PPO struct {
	fastEMA   EMA
	slowEMA   EMA
	signalEMA EMA
}

// NewPPO creates a PPO with the given fast, slow and signal periods.
func NewPPO(fastPeriod, slowPeriod, signalPeriod int) (*PPO, error) {
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
	return &PPO{
		fastEMA:   *fast,
		slowEMA:   *slow,
		signalEMA: *signal,
	}, nil
}

// NewDefaultPPO creates a PPO with the conventional 12/26/9 periods.
func NewDefaultPPO() *PPO {
	p, _ := NewPPO(DefaultPPOFastPeriod, DefaultPPOSlowPeriod, DefaultPPOSignalPeriod)
	return p
}

// Next consumes one value and returns the updated triple.
func (p *PPO) Next(input decimal.Decimal) PPOOutput {
	fastVal := p.fastEMA.Next(input)
	slowVal := p.slowEMA.Next(input)

	ppo := fastVal.Sub(slowVal).Div(slowVal).Mul(hundred)
	signal := p.signalEMA.Next(ppo)
	histogram := ppo.Sub(signal)

	return PPOOutput{
		PPO:       ppo,
		Signal:    signal,
		Histogram: histogram,
	}
}

// NextBar consumes the close price of a bar.
func (p *PPO) NextBar(bar Close) PPOOutput {
	return p.Next(bar.Close())
}

// Reset restores the post-construction state of all three EMAs.
func (p *PPO) Reset() {
	p.fastEMA.Reset()
	p.slowEMA.Reset()
	p.signalEMA.Reset()
}

func (p *PPO) String() string {
	return fmt.Sprintf("PPO(%d, %d, %d)",
		p.fastEMA.Period(), p.slowEMA.Period(), p.signalEMA.Period())
}
