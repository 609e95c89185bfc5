package ta

import "testing"

func TestTrueRange_NextScalar(t *testing.T) {
	tr := NewTrueRange()

	assertDec(t, "n=1", tr.Next(dec("2.5")), "0")
	assertDec(t, "n=2", tr.Next(dec("3.6")), "1.1")
	assertDec(t, "n=3", tr.Next(dec("3.3")), "0.3")
}

func TestTrueRange_NextBar(t *testing.T) {
	tr := NewTrueRange()

	assertDec(t, "bar 1", tr.NextBar(hlcBar("10", "7.5", "9")), "2.5")
	assertDec(t, "bar 2", tr.NextBar(hlcBar("11", "9", "9.5")), "2")
	assertDec(t, "bar 3", tr.NextBar(hlcBar("9", "5", "8")), "4.5")
}

func TestTrueRange_Reset(t *testing.T) {
	tr := NewTrueRange()

	tr.NextBar(hlcBar("10", "7.5", "9"))
	tr.NextBar(hlcBar("11", "9", "9.5"))

	tr.Reset()
	assertDec(t, "after reset", tr.NextBar(hlcBar("60", "15", "51")), "45")
}

func TestTrueRange_String(t *testing.T) {
	tr := NewTrueRange()
	if tr.String() != "TRUE_RANGE()" {
		t.Errorf("String: got %q, want TRUE_RANGE()", tr.String())
	}
}
