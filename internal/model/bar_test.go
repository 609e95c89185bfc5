package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestBarBuilderBuild(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	bar, err := NewBarBuilder().
		Symbol("RELIANCE").
		Timestamp(ts).
		Open(d("2930.50")).
		High(d("2941.00")).
		Low(d("2925.25")).
		Close(d("2939.75")).
		Volume(d("18250")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE", bar.Symbol())
	assert.Equal(t, ts, bar.Timestamp())
	assert.True(t, bar.Open().Equal(d("2930.50")))
	assert.True(t, bar.High().Equal(d("2941.00")))
	assert.True(t, bar.Low().Equal(d("2925.25")))
	assert.True(t, bar.Close().Equal(d("2939.75")))
	assert.True(t, bar.Volume().Equal(d("18250")))
}

func TestBarBuilderIncomplete(t *testing.T) {
	_, err := NewBarBuilder().Build()
	assert.ErrorIs(t, err, ErrBarIncomplete)

	// one field missing is still incomplete
	_, err = NewBarBuilder().
		Open(d("10")).High(d("12")).Low(d("9")).Close(d("11")).
		Build()
	assert.ErrorIs(t, err, ErrBarIncomplete)
}

func TestBarBuilderInvalid(t *testing.T) {
	cases := []struct {
		name                          string
		open, high, low, close, volume string
	}{
		{"low above open", "10", "12", "11", "12", "100"},
		{"low above close", "11", "12", "10.5", "10", "100"},
		{"low above high", "12", "11", "11.5", "12", "100"},
		{"high below open", "13", "12", "10", "11", "100"},
		{"high below close", "11", "12", "10", "12.5", "100"},
		{"negative volume", "10", "12", "9", "11", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBarBuilder().
				Open(d(tc.open)).
				High(d(tc.high)).
				Low(d(tc.low)).
				Close(d(tc.close)).
				Volume(d(tc.volume)).
				Build()
			assert.ErrorIs(t, err, ErrBarInvalid)
		})
	}
}

func TestBarBuilderEqualPrices(t *testing.T) {
	// a flat bar (all prices equal, zero volume) is valid
	bar, err := NewBarBuilder().
		Open(d("5")).High(d("5")).Low(d("5")).Close(d("5")).Volume(decimal.Zero).
		Build()
	require.NoError(t, err)
	assert.True(t, bar.High().Equal(bar.Low()))
}

func TestIndicatorUpdateKeys(t *testing.T) {
	u := &IndicatorUpdate{
		Name:   "EMA(9)",
		Symbol: "TCS",
		TS:     time.Date(2024, 3, 1, 9, 16, 0, 0, time.UTC),
		Value:  d("4102.35"),
		Warm:   true,
	}
	assert.Equal(t, "EMA(9):TCS", u.Key())
	assert.Equal(t, "ind:EMA(9):TCS", u.StreamKey())

	var decoded IndicatorUpdate
	require.NoError(t, json.Unmarshal(u.JSON(), &decoded))
	assert.Equal(t, u.Name, decoded.Name)
	assert.True(t, decoded.Value.Equal(u.Value))
	assert.True(t, decoded.Warm)
}
