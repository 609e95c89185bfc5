package ta

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	three   = decimal.NewFromInt(3)
	hundred = decimal.NewFromInt(100)
)

// max3 returns the largest of three decimals.
func max3(a, b, c decimal.Decimal) decimal.Decimal {
	m := a
	if b.GreaterThan(m) {
		m = b
	}
	if c.GreaterThan(m) {
		m = c
	}
	return m
}

// sqrt returns the square root of a non-negative decimal, or zero for
// non-positive inputs. shopspring/decimal carries no square root, so the
// float64 root seeds a Newton iteration; two steps carry the seed well past
// the package's division precision.
func sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	f, _ := d.Float64()
	g := decimal.NewFromFloat(math.Sqrt(f))
	if g.Sign() <= 0 {
		// input below float64 resolution
		g = d
	}
	for i := 0; i < 2; i++ {
		g = g.Add(d.Div(g)).Div(two)
	}
	return g
}
