package patterns

import (
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// Kind tags the pattern variant
type Kind string

const (
	None       Kind = "none"
	InsideBar  Kind = "inside_bar"
	OutsideBar Kind = "outside_bar"
	ThreeOne   Kind = "3-1"
	Momentum   Kind = "momentum"
)

// Direction is the directional bias of a pattern
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// BarSnapshot captures the OHLC and date of a defining bar
type BarSnapshot struct {
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	Date  time.Time `json:"date"`
}

// Pattern is a tagged variant over the supported candle patterns. Three and
// One are populated only for the 3-1 composite: Three is the engulfing
// outside bar, One the contained inside bar.
type Pattern struct {
	Kind      Kind         `json:"kind"`
	Direction Direction    `json:"direction"`
	Three     *BarSnapshot `json:"three,omitempty"`
	One       *BarSnapshot `json:"one,omitempty"`
}

// NonePattern returns the no-match value
func NonePattern() Pattern {
	return Pattern{Kind: None, Direction: Neutral}
}

// Matched reports whether the pattern is a real match
func (p Pattern) Matched() bool {
	return p.Kind != None
}

func snapshot(bar marketdata.Bar) *BarSnapshot {
	return &BarSnapshot{
		Open:  bar.Open,
		High:  bar.High,
		Low:   bar.Low,
		Close: bar.Close,
		Date:  bar.Timestamp,
	}
}
