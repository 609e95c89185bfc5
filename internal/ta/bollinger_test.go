package ta

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBollingerBands_New(t *testing.T) {
	if _, err := NewBollingerBands(0, dec("2")); err != ErrInvalidParameter {
		t.Errorf("period 0: got %v, want ErrInvalidParameter", err)
	}
	if _, err := NewBollingerBands(1, dec("2")); err != nil {
		t.Errorf("period 1: unexpected error %v", err)
	}
}

func TestBollingerBands_Next(t *testing.T) {
	bb, _ := NewBollingerBands(3, dec("2"))

	a := bb.Next(dec("2"))
	b := bb.Next(dec("5"))
	c := bb.Next(dec("1"))
	d := bb.Next(dec("6.25"))

	assertDec(t, "a.average", a.Average, "2")
	assertDec(t, "b.average", b.Average, "3.5")
	assertDec(t, "c.average", c.Average, "2.667")
	assertDec(t, "d.average", d.Average, "4.083")

	assertDec(t, "a.upper", a.Upper, "2")
	assertDec(t, "b.upper", b.Upper, "6.5")
	assertDec(t, "c.upper", c.Upper, "6.066")
	assertDec(t, "d.upper", d.Upper, "8.562")

	assertDec(t, "a.lower", a.Lower, "2")
	assertDec(t, "b.lower", b.Lower, "0.5")
	assertDec(t, "c.lower", c.Lower, "-0.733")
	assertDec(t, "d.lower", d.Lower, "-0.395")
}

func TestBollingerBands_NextBar(t *testing.T) {
	bb, _ := NewBollingerBands(3, dec("2"))

	a := bb.NextBar(closeBar("2"))
	b := bb.NextBar(closeBar("5"))

	assertDec(t, "a.average", a.Average, "2")
	assertDec(t, "b.upper", b.Upper, "6.5")
}

func TestBollingerBands_Reset(t *testing.T) {
	bb, _ := NewBollingerBands(5, dec("2"))

	out := bb.Next(dec("3"))
	assertDec(t, "cold average", out.Average, "3")
	assertDec(t, "cold upper", out.Upper, "3")
	assertDec(t, "cold lower", out.Lower, "3")

	bb.Next(dec("2.5"))
	bb.Next(dec("3.5"))
	bb.Next(dec("4"))

	out = bb.Next(dec("2"))
	assertDec(t, "warm average", out.Average, "3")
	assertDec(t, "warm upper", out.Upper, "4.414")
	assertDec(t, "warm lower", out.Lower, "1.586")

	bb.Reset()
	out = bb.Next(dec("3"))
	assertDec(t, "reset average", out.Average, "3")
	assertDec(t, "reset upper", out.Upper, "3")
	assertDec(t, "reset lower", out.Lower, "3")
}

func TestBollingerBands_Default(t *testing.T) {
	bb := NewDefaultBollingerBands()
	if bb.Period() != 9 {
		t.Errorf("default period: got %d, want 9", bb.Period())
	}
	if !bb.Multiplier().Equal(decimal.NewFromInt(2)) {
		t.Errorf("default multiplier: got %s, want 2", bb.Multiplier())
	}
}

func TestBollingerBands_String(t *testing.T) {
	bb, _ := NewBollingerBands(10, decimal.NewFromInt(3))
	if bb.String() != "BB(10, 3)" {
		t.Errorf("String: got %q, want BB(10, 3)", bb.String())
	}
}
