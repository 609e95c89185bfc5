package ta

import "github.com/shopspring/decimal"

// OBV keeps the On-Balance Volume running total: volume added when the
// close rises, subtracted when it falls, untouched when it is unchanged.
// The previous close is replaced on every call regardless. Bar-only and
// not windowed.
type OBV struct {
	obv       decimal.Decimal
	prevClose decimal.Decimal
}

// NewOBV creates an OBV.
func NewOBV() *OBV {
	return &OBV{}
}

// NextBar consumes a bar's close and volume and returns the running total.
func (o *OBV) NextBar(bar CloseVolume) decimal.Decimal {
	switch bar.Close().Cmp(o.prevClose) {
	case 1:
		o.obv = o.obv.Add(bar.Volume())
	case -1:
		o.obv = o.obv.Sub(bar.Volume())
	}
	o.prevClose = bar.Close()
	return o.obv
}

// Reset restores the post-construction state.
func (o *OBV) Reset() {
	o.obv = decimal.Zero
	o.prevClose = decimal.Zero
}

func (o *OBV) String() string {
	return "OBV"
}
