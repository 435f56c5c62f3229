package database

import (
	"regexp"
	"strconv"
	"time"
)

// Recommendation is the persisted unit of work from a scoring pass. Created
// once, never mutated: corrections happen via new recommendations.
type Recommendation struct {
	ID               int64           `json:"id"`
	Ticker           string          `json:"ticker"`
	Company          string          `json:"company"`
	OptionType       string          `json:"option_type"` // CALL or PUT
	StrikePrice      float64         `json:"strike_price"`
	CurrentPrice     float64         `json:"current_price"`
	ExpirationWindow string          `json:"expiration_window"` // Text bucket, e.g. "1-2 weeks"
	Confidence       int             `json:"confidence"`
	Pattern          string          `json:"pattern"`
	Direction        string          `json:"direction"`
	VolumeRatio      float64         `json:"volume_ratio"`
	NewsSentiment    string          `json:"news_sentiment"`
	Source           string          `json:"source"`
	Reasoning        []string        `json:"reasoning"`
	OptionsFlow      []byte          `json:"-"` // JSON snapshot
	ContractQuote    []byte          `json:"-"` // JSON snapshot
	CreatedAt        time.Time       `json:"created_at"`
	ExpirationDate   time.Time       `json:"expiration_date"`
}

// Outcome records one backtest checkpoint for a recommendation. At most one
// row exists per (recommendation_id, days_after).
type Outcome struct {
	ID               int64     `json:"id"`
	RecommendationID int64     `json:"recommendation_id"`
	DaysAfter        int       `json:"days_after"` // 1, 3, 5, 7, or 14
	ActualPrice      float64   `json:"actual_price"`
	PriceChangePct   float64   `json:"price_change_pct"`
	WasProfitable    bool      `json:"was_profitable"`
	ProfitPct        float64   `json:"profit_pct"`
	CheckedAt        time.Time `json:"checked_at"`
}

// PatternPerformance is the per-pattern aggregate the learner maintains.
// Its confidence_adjustment is the sole feedback channel into scoring.
type PatternPerformance struct {
	ID                   int64     `json:"id"`
	Pattern              string    `json:"pattern"`
	TotalRecommendations int       `json:"total_recommendations"`
	SuccessfulCount      int       `json:"successful_count"`
	FailedCount          int       `json:"failed_count"`
	AvgConfidence        float64   `json:"avg_confidence"`
	AvgSuccessRate       float64   `json:"avg_success_rate"`
	ConfidenceAdjustment int       `json:"confidence_adjustment"` // -5..+5
	LastUpdated          time.Time `json:"last_updated"`
}

// ScanRecord summarizes one completed scan for the history view
type ScanRecord struct {
	ID           int64     `json:"id"`
	ScanID       string    `json:"scan_id"`
	Source       string    `json:"source"`
	Criteria     []byte    `json:"-"`
	ResultsCount int       `json:"results_count"`
	Tickers      []string  `json:"tickers"`
	TopScores    []byte    `json:"-"`
	AvgScore     float64   `json:"avg_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// PatternStats is an aggregation row read back for the learner
type PatternStats struct {
	Pattern       string
	Total         int
	Successes     int
	AvgConfidence float64
}

var weeksPattern = regexp.MustCompile(`(\d+)`)

// ExpirationFromWindow maps a textual expiration bucket to a concrete date.
// The first number in the text is taken as a week count ("1-2 weeks" means
// one week out), and unparseable buckets default to 14 days.
func ExpirationFromWindow(window string, now time.Time) time.Time {
	match := weeksPattern.FindString(window)
	if match == "" {
		return now.AddDate(0, 0, 14)
	}
	weeks, err := strconv.Atoi(match)
	if err != nil || weeks <= 0 {
		return now.AddDate(0, 0, 14)
	}
	return now.AddDate(0, 0, weeks*7)
}
