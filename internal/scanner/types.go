package scanner

import (
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scoring"
)

// Scan sources
const (
	SourceSqueeze    = "squeeze"
	SourceDailyPlays = "daily_plays"
)

// TickerInput is one universe entry. ShortInterest is zero when unknown.
type TickerInput struct {
	Ticker        string  `json:"ticker"`
	Company       string  `json:"company"`
	ShortInterest float64 `json:"short_interest"`
}

// Criteria are the squeeze scan filters. Daily-plays scans ignore them.
type Criteria struct {
	MinShortInterest float64 `json:"min_short_interest"`
	MinDailyChange   float64 `json:"min_daily_change"`
	MinVolumeRatio   float64 `json:"min_volume_ratio"`
	MinRiskScore     float64 `json:"min_risk_score"`
}

// Request is an inbound "run a scan" trigger. How it arrives (HTTP, cron,
// CLI) is not this package's concern.
type Request struct {
	Source           string        `json:"source"`
	Tickers          []TickerInput `json:"tickers"`
	ExpirationWindow string        `json:"expiration_window"`
	Criteria         Criteria      `json:"criteria"`
}

// Candidate is one fully scored scan result
type Candidate struct {
	Ticker           string                         `json:"ticker"`
	Company          string                         `json:"company"`
	OptionType       analysis.OptionType            `json:"option_type"`
	StrikePrice      float64                        `json:"strike_price"`
	CurrentPrice     float64                        `json:"current_price"`
	DailyChange      float64                        `json:"daily_change"`
	VolumeRatio      float64                        `json:"volume_ratio"`
	ShortInterest    float64                        `json:"short_interest,omitempty"`
	RiskScore        float64                        `json:"risk_score,omitempty"`
	Confidence       int                            `json:"confidence"`
	Pattern          patterns.Pattern               `json:"pattern"`
	Sentiment        analysis.Sentiment             `json:"sentiment"`
	MTF              *analysis.MultiTimeframeResult `json:"mtf,omitempty"`
	Flow             analysis.OptionsFlow           `json:"options_flow"`
	Contract         *marketdata.OptionContract     `json:"contract,omitempty"`
	Quality          scoring.QualityResult          `json:"quality"`
	Reasoning        []string                       `json:"reasoning"`
	ExpirationWindow string                         `json:"expiration_window"`
	PassedFilters    bool                           `json:"passed_filters"`
}

// Result aggregates one completed scan
type Result struct {
	ScanID         string        `json:"scan_id"`
	Source         string        `json:"source"`
	StartTime      time.Time     `json:"start_time"`
	Duration       time.Duration `json:"duration"`
	TickersScanned int           `json:"tickers_scanned"`
	Candidates     []Candidate   `json:"candidates"`
	Note           string        `json:"note,omitempty"`
}

// Config holds scanner configuration
type Config struct {
	WorkerCount   int
	ScanTimeout   time.Duration
	TickerTimeout time.Duration
	MinCandidates int
	MaxCandidates int
}
