package ta

import "testing"

func TestEfficiencyRatio_New(t *testing.T) {
	if _, err := NewEfficiencyRatio(0); err != ErrInvalidParameter {
		t.Errorf("NewEfficiencyRatio(0): got %v, want ErrInvalidParameter", err)
	}
	if _, err := NewEfficiencyRatio(1); err != nil {
		t.Errorf("NewEfficiencyRatio(1): unexpected error %v", err)
	}
}

func TestEfficiencyRatio_Next(t *testing.T) {
	er, _ := NewEfficiencyRatio(3)

	inputs := []string{"3", "5", "2", "3", "1", "3", "4", "6"}
	want := []string{"1", "1", "0.2", "0", "0.667", "0.2", "0.2", "1"}

	for i, in := range inputs {
		assertDec(t, "ER(3)", er.Next(dec(in)), want[i])
	}
}

// A flat window has zero volatility; the ratio is defined as 1 there.
func TestEfficiencyRatio_FlatStream(t *testing.T) {
	er, _ := NewEfficiencyRatio(4)
	for i := 0; i < 10; i++ {
		assertDec(t, "flat stream", er.Next(dec("7.25")), "1")
	}
}

func TestEfficiencyRatio_NextBar(t *testing.T) {
	er, _ := NewEfficiencyRatio(3)
	assertDec(t, "bar 1", er.NextBar(closeBar("3")), "1")
	assertDec(t, "bar 2", er.NextBar(closeBar("5")), "1")
	assertDec(t, "bar 3", er.NextBar(closeBar("2")), "0.2")
}

func TestEfficiencyRatio_Reset(t *testing.T) {
	er, _ := NewEfficiencyRatio(3)
	er.Next(dec("3"))
	er.Next(dec("5"))

	er.Reset()

	inputs := []string{"3", "5", "2", "3"}
	want := []string{"1", "1", "0.2", "0"}
	for i, in := range inputs {
		assertDec(t, "after reset", er.Next(dec(in)), want[i])
	}
}

func TestEfficiencyRatio_Default(t *testing.T) {
	er := NewDefaultEfficiencyRatio()
	if er.Period() != 14 {
		t.Errorf("default period: got %d, want 14", er.Period())
	}
}

func TestEfficiencyRatio_String(t *testing.T) {
	er, _ := NewEfficiencyRatio(17)
	if er.String() != "ER(17)" {
		t.Errorf("String: got %q, want ER(17)", er.String())
	}
}
