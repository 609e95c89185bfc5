package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorUpdate holds one computed indicator output for a symbol. Scalar
// indicators fill Value; multi-output indicators (bands, MACD, PPO) fill
// Components keyed by component name ("upper", "signal", ...) and leave
// Value at the primary line's value.
type IndicatorUpdate struct {
	Name       string                     `json:"name"` // indicator label, e.g. "EMA(9)"
	Symbol     string                     `json:"symbol"`
	TS         time.Time                  `json:"ts"` // bar timestamp that produced this value
	Value      decimal.Decimal            `json:"value"`
	Components map[string]decimal.Decimal `json:"components,omitempty"`
	Warm       bool                       `json:"warm"` // true once the window is fully primed
}

// Key returns "name:symbol".
func (u *IndicatorUpdate) Key() string {
	return u.Name + ":" + u.Symbol
}

// StreamKey returns the Redis stream key: "ind:{name}:{symbol}".
func (u *IndicatorUpdate) StreamKey() string {
	return "ind:" + u.Name + ":" + u.Symbol
}

// PubSubChannel returns the Redis pub/sub channel: "pub:ind:{name}:{symbol}".
func (u *IndicatorUpdate) PubSubChannel() string {
	return "pub:ind:" + u.Name + ":" + u.Symbol
}

// JSON returns the JSON-encoded update (ignoring errors for hot-path usage).
func (u *IndicatorUpdate) JSON() []byte {
	b, _ := json.Marshal(u)
	return b
}
