package marketdata

import "time"

// Bar represents a single OHLCV candle. Bars are immutable once fetched;
// sequences are chronologically ordered, oldest first.
type Bar struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Quote represents a near-real-time snapshot for a symbol
type Quote struct {
	Symbol        string    `json:"symbol"`
	Company       string    `json:"company"`
	Last          float64   `json:"last"`
	Bid           float64   `json:"bid"`
	Ask           float64   `json:"ask"`
	Volume        float64   `json:"volume"`
	ChangePercent float64   `json:"change_percent"`
	FloatShares   float64   `json:"float_shares"`
	MarketCap     float64   `json:"market_cap"`
	WeekHigh52    float64   `json:"week_high_52"`
	WeekLow52     float64   `json:"week_low_52"`
	Source        string    `json:"source"` // Informational only; callers must not branch on it
	UpdatedAt     time.Time `json:"updated_at"`
}

// OptionContract is one row of an options chain
type OptionContract struct {
	ContractSymbol string  `json:"contract_symbol"`
	Strike         float64 `json:"strike"`
	LastPrice      float64 `json:"last_price"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Volume         float64 `json:"volume"`
	OpenInterest   float64 `json:"open_interest"`
}

// OptionsChain holds calls and puts for the nearest expiration
type OptionsChain struct {
	Symbol     string           `json:"symbol"`
	Expiration time.Time        `json:"expiration"`
	Calls      []OptionContract `json:"calls"`
	Puts       []OptionContract `json:"puts"`
}

// NewsItem is a single headline used for sentiment scoring
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	PublishedAt time.Time `json:"published_at"`
}

// Supported history intervals
const (
	Interval1h = "1h"
	Interval1d = "1d"
	Interval1w = "1wk"
)

// Common history periods
const (
	Period1mo = "1mo"
	Period3mo = "3mo"
	Period6mo = "6mo"
	Period1y  = "1y"
)
