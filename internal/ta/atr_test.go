package ta

import "testing"

func TestATR_New(t *testing.T) {
	if _, err := NewATR(0); err != ErrInvalidParameter {
		t.Errorf("NewATR(0): got %v, want ErrInvalidParameter", err)
	}
	if _, err := NewATR(1); err != nil {
		t.Errorf("NewATR(1): unexpected error %v", err)
	}
}

func TestATR_NextBar(t *testing.T) {
	atr, _ := NewATR(3)

	assertDec(t, "bar 1", atr.NextBar(hlcBar("10", "7.5", "9")), "2.5")
	assertDec(t, "bar 2", atr.NextBar(hlcBar("11", "9", "9.5")), "2.25")
	assertDec(t, "bar 3", atr.NextBar(hlcBar("9", "5", "8")), "3.375")
}

func TestATR_NextScalar(t *testing.T) {
	atr, _ := NewATR(3)

	// scalar true range: 0, then absolute changes 3, 4
	assertDec(t, "n=1", atr.Next(dec("2")), "0")
	assertDec(t, "n=2", atr.Next(dec("5")), "1.5")
	assertDec(t, "n=3", atr.Next(dec("1")), "2.75")
}

func TestATR_Reset(t *testing.T) {
	atr, _ := NewATR(9)

	atr.NextBar(hlcBar("10", "7.5", "9"))
	atr.NextBar(hlcBar("11", "9", "9.5"))

	atr.Reset()
	assertDec(t, "after reset", atr.NextBar(hlcBar("60", "15", "51")), "45")
}

func TestATR_Default(t *testing.T) {
	atr := NewDefaultATR()
	if atr.Period() != 14 {
		t.Errorf("default period: got %d, want 14", atr.Period())
	}
}

func TestATR_String(t *testing.T) {
	atr, _ := NewATR(8)
	if atr.String() != "ATR(8)" {
		t.Errorf("String: got %q, want ATR(8)", atr.String())
	}
}
