package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
)

// Timeframe identifies one of the four confirmation views
type Timeframe string

const (
	TF1h Timeframe = "1h"
	TF4h Timeframe = "4h"
	TF1d Timeframe = "1d"
	TF1w Timeframe = "1wk"
)

// ConfirmationTimeframes lists the views in evaluation order
var ConfirmationTimeframes = []Timeframe{TF1h, TF4h, TF1d, TF1w}

// Confirmation records a pattern match on one timeframe
type Confirmation struct {
	Timeframe Timeframe          `json:"timeframe"`
	Pattern   patterns.Pattern   `json:"pattern"`
	Direction patterns.Direction `json:"direction"`
}

// MultiTimeframeResult aggregates pattern agreement across timeframes
type MultiTimeframeResult struct {
	Confirmations      []Confirmation     `json:"confirmations"`
	ConfirmationCount  int                `json:"confirmation_count"`
	StrongestDirection patterns.Direction `json:"strongest_direction"`
}

// MultiTimeframeAnalyzer runs the pattern detector independently over four
// resampled views of the same symbol. 4h bars are built from 1h bars and
// weekly bars from daily bars; the other two come straight from the provider.
type MultiTimeframeAnalyzer struct {
	provider marketdata.Provider
	detector *patterns.Detector
	logger   zerolog.Logger
}

// NewMultiTimeframeAnalyzer creates an analyzer over the given provider
func NewMultiTimeframeAnalyzer(provider marketdata.Provider, detector *patterns.Detector, logger zerolog.Logger) *MultiTimeframeAnalyzer {
	return &MultiTimeframeAnalyzer{
		provider: provider,
		detector: detector,
		logger:   logger.With().Str("component", "MultiTimeframeAnalyzer").Logger(),
	}
}

// Analyze evaluates all four timeframes for the symbol. A timeframe whose
// series is short or whose fetch fails is skipped, never fatal: losing a
// view can only lower the confirmation count, not abort the scan.
func (a *MultiTimeframeAnalyzer) Analyze(ctx context.Context, symbol string) *MultiTimeframeResult {
	result := &MultiTimeframeResult{}

	for _, tf := range ConfirmationTimeframes {
		bars, err := a.fetchTimeframe(ctx, symbol, tf)
		if err != nil {
			a.logger.Debug().Str("symbol", symbol).Str("timeframe", string(tf)).Err(err).Msg("timeframe skipped")
			continue
		}
		if len(bars) < 3 {
			continue
		}

		matched, pattern := a.detector.CheckPattern(bars)
		if !matched {
			continue
		}

		result.Confirmations = append(result.Confirmations, Confirmation{
			Timeframe: tf,
			Pattern:   pattern,
			Direction: pattern.Direction,
		})
	}

	result.ConfirmationCount = len(result.Confirmations)
	result.StrongestDirection = majorityDirection(result.Confirmations)

	return result
}

func (a *MultiTimeframeAnalyzer) fetchTimeframe(ctx context.Context, symbol string, tf Timeframe) ([]marketdata.Bar, error) {
	switch tf {
	case TF1h:
		return a.provider.FetchBars(ctx, symbol, marketdata.Period1mo, marketdata.Interval1h)
	case TF4h:
		hourly, err := a.provider.FetchBars(ctx, symbol, marketdata.Period1mo, marketdata.Interval1h)
		if err != nil {
			return nil, err
		}
		return Resample(hourly, FourHourBucket), nil
	case TF1d:
		return a.provider.FetchBars(ctx, symbol, marketdata.Period3mo, marketdata.Interval1d)
	case TF1w:
		daily, err := a.provider.FetchBars(ctx, symbol, marketdata.Period6mo, marketdata.Interval1d)
		if err != nil {
			return nil, err
		}
		return Resample(daily, WeekBucket), nil
	}
	return nil, marketdata.ErrDataUnavailable
}

// majorityDirection returns the majority vote among confirmations; ties and
// empty inputs resolve to neutral
func majorityDirection(confirmations []Confirmation) patterns.Direction {
	var bullish, bearish int
	for _, c := range confirmations {
		switch c.Direction {
		case patterns.Bullish:
			bullish++
		case patterns.Bearish:
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		return patterns.Bullish
	case bearish > bullish:
		return patterns.Bearish
	default:
		return patterns.Neutral
	}
}
