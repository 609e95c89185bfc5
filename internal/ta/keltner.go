package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// KeltnerChannelOutput is the channel triple produced on every update.
type KeltnerChannelOutput struct {
	Average decimal.Decimal
	Upper   decimal.Decimal
	Lower   decimal.Decimal
}

// KeltnerChannel places bands multiplier ATRs either side of an EMA.
// When a full bar is available the EMA is fed the typical price
// (high+low+close)/3; the scalar form feeds the raw value to both
// sub-indicators. EMA and ATR share the same period.
type KeltnerChannel struct {
	period     int
	multiplier decimal.Decimal
	atr        ATR
	ema        EMA
}

// NewKeltnerChannel creates a Keltner Channel with the given period and
// band multiplier.
func NewKeltnerChannel(period int, multiplier decimal.Decimal) (*KeltnerChannel, error) {
	atr, err := NewATR(period)
	if err != nil {
		return nil, err
	}
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}
	return &KeltnerChannel{
		period:     period,
		multiplier: multiplier,
		atr:        *atr,
		ema:        *ema,
	}, nil
}

// NewDefaultKeltnerChannel creates a Keltner Channel with the conventional
// period 10 and multiplier 2.
func NewDefaultKeltnerChannel() *KeltnerChannel {
	k, _ := NewKeltnerChannel(DefaultKeltnerChannelPeriod, DefaultKeltnerChannelMultiplier)
	return k
}

// Period returns the shared EMA/ATR period.
func (k *KeltnerChannel) Period() int { return k.period }

// Multiplier returns the band width in ATRs.
func (k *KeltnerChannel) Multiplier() decimal.Decimal { return k.multiplier }

// Next consumes one value and returns the updated channel.
func (k *KeltnerChannel) Next(input decimal.Decimal) KeltnerChannelOutput {
	atr := k.atr.Next(input)
	average := k.ema.Next(input)
	band := atr.Mul(k.multiplier)

	return KeltnerChannelOutput{
		Average: average,
		Upper:   average.Add(band),
		Lower:   average.Sub(band),
	}
}

// NextBar consumes a full bar; the EMA tracks the typical price.
func (k *KeltnerChannel) NextBar(bar HighLowClose) KeltnerChannelOutput {
	typical := bar.High().Add(bar.Low()).Add(bar.Close()).Div(three)

	average := k.ema.Next(typical)
	atr := k.atr.NextBar(bar)
	band := atr.Mul(k.multiplier)

	return KeltnerChannelOutput{
		Average: average,
		Upper:   average.Add(band),
		Lower:   average.Sub(band),
	}
}

// Reset restores the post-construction state of both sub-indicators.
func (k *KeltnerChannel) Reset() {
	k.atr.Reset()
	k.ema.Reset()
}

func (k *KeltnerChannel) String() string {
	return fmt.Sprintf("KC(%d, %s)", k.period, k.multiplier)
}
