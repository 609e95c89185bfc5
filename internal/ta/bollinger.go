package ta

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BollingerBandsOutput is the band triple produced on every update.
type BollingerBandsOutput struct {
	Average decimal.Decimal
	Upper   decimal.Decimal
	Lower   decimal.Decimal
}

// BollingerBands places bands multiplier standard deviations either side
// of the window mean. Its entire state is the owned StdDev; the centre
// line reuses the accumulator's running mean, so each update stays O(1).
type BollingerBands struct {
	period     int
	multiplier decimal.Decimal
	sd         StdDev
}

// NewBollingerBands creates Bollinger Bands with the given period and
// band multiplier.
func NewBollingerBands(period int, multiplier decimal.Decimal) (*BollingerBands, error) {
	sd, err := NewStdDev(period)
	if err != nil {
		return nil, err
	}
	return &BollingerBands{
		period:     period,
		multiplier: multiplier,
		sd:         *sd,
	}, nil
}

// NewDefaultBollingerBands creates Bollinger Bands with the conventional
// period 9 and multiplier 2.
func NewDefaultBollingerBands() *BollingerBands {
	b, _ := NewBollingerBands(DefaultBollingerBandsPeriod, DefaultBollingerBandsMultiplier)
	return b
}

// Period returns the window length.
func (b *BollingerBands) Period() int { return b.period }

// Multiplier returns the band width in standard deviations.
func (b *BollingerBands) Multiplier() decimal.Decimal { return b.multiplier }

// Next consumes one value and returns the updated bands.
func (b *BollingerBands) Next(input decimal.Decimal) BollingerBandsOutput {
	sd := b.sd.Next(input)
	mean := b.sd.Mean()
	band := sd.Mul(b.multiplier)

	return BollingerBandsOutput{
		Average: mean,
		Upper:   mean.Add(band),
		Lower:   mean.Sub(band),
	}
}

// NextBar consumes the close price of a bar.
func (b *BollingerBands) NextBar(bar Close) BollingerBandsOutput {
	return b.Next(bar.Close())
}

// Reset restores the post-construction state.
func (b *BollingerBands) Reset() {
	b.sd.Reset()
}

func (b *BollingerBands) String() string {
	return fmt.Sprintf("BB(%d, %s)", b.period, b.multiplier)
}
