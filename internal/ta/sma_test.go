package ta

import "testing"

func TestSMA_New(t *testing.T) {
	if _, err := NewSMA(0); err != ErrInvalidParameter {
		t.Errorf("NewSMA(0): got %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSMA(1); err != nil {
		t.Errorf("NewSMA(1): unexpected error %v", err)
	}
}

func TestSMA_Next(t *testing.T) {
	sma, _ := NewSMA(4)

	inputs := []string{"4", "5", "6", "6", "6", "6", "2"}
	want := []string{"4", "4.5", "5", "5.25", "5.75", "6", "5"}

	for i, in := range inputs {
		assertDec(t, "SMA(4)", sma.Next(dec(in)), want[i])
	}
}

func TestSMA_NextBar(t *testing.T) {
	sma, _ := NewSMA(3)

	assertDec(t, "bar 1", sma.NextBar(closeBar("4")), "4")
	assertDec(t, "bar 2", sma.NextBar(closeBar("4")), "4")
	assertDec(t, "bar 3", sma.NextBar(closeBar("7")), "5")
	assertDec(t, "bar 4", sma.NextBar(closeBar("1")), "4")
}

func TestSMA_Reset(t *testing.T) {
	sma, _ := NewSMA(4)
	sma.Next(dec("4"))
	sma.Next(dec("5"))
	sma.Next(dec("6"))

	sma.Reset()
	assertDec(t, "after reset", sma.Next(dec("99")), "99")
}

func TestSMA_Default(t *testing.T) {
	sma := NewDefaultSMA()
	if sma.Period() != 9 {
		t.Errorf("default period: got %d, want 9", sma.Period())
	}
}

func TestSMA_String(t *testing.T) {
	sma, _ := NewSMA(5)
	if sma.String() != "SMA(5)" {
		t.Errorf("String: got %q, want SMA(5)", sma.String())
	}
}
