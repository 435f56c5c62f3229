package scoring

import (
	"fmt"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
)

// Confidence bounds. The ceiling stays below 100: the scorer never
// advertises certainty.
const (
	BaseConfidence = 50
	MaxConfidence  = 95
)

// Candidate carries everything the scorer combines for one symbol. Missing
// components contribute zero; the scorer never fails on partial input.
type Candidate struct {
	Symbol      string
	Pattern     patterns.Pattern
	RiskScore   float64 // Squeeze risk composite, 0 when not a squeeze candidate
	DailyChange float64 // Percent move on the day
	VolumeRatio float64
	Sentiment   analysis.Sentiment
	MTF         *analysis.MultiTimeframeResult
	Flow        analysis.OptionsFlow
	Adjustment  int // Learned pattern adjustment, applied verbatim
}

// Scorer combines pattern strength, alignment, volume, sentiment, options
// flow, multi-timeframe agreement, and the learned pattern adjustment into
// a single confidence value with human-readable reasoning.
type Scorer struct{}

// NewScorer creates a confidence scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the composite confidence in [0,95] and the ordered list of
// contributing factors.
func (s *Scorer) Score(c Candidate) (int, []string) {
	confidence := BaseConfidence
	reasoning := make([]string, 0, 8)

	// Pattern strength, capped at +20
	switch {
	case c.RiskScore >= 80:
		confidence += 20
		reasoning = append(reasoning, fmt.Sprintf("High squeeze risk score (%.1f)", c.RiskScore))
	case c.Pattern.Kind == patterns.ThreeOne:
		confidence += 15
		reasoning = append(reasoning, "3-1 pattern detected (outside bar + inside bar)")
	case c.Pattern.Kind == patterns.OutsideBar:
		confidence += 14
		reasoning = append(reasoning, "Outside bar expansion")
	case c.Pattern.Kind == patterns.InsideBar:
		confidence += 12
		reasoning = append(reasoning, "Inside bar consolidation")
	case c.Pattern.Kind == patterns.Momentum:
		confidence += 8
		reasoning = append(reasoning, "Momentum bar on elevated volume")
	case c.Pattern.Matched():
		confidence += 10
		reasoning = append(reasoning, "Pattern detected: "+string(c.Pattern.Kind))
	}

	// Direction / momentum alignment
	if c.Pattern.Direction != patterns.Neutral {
		if directionMatchesChange(c.Pattern.Direction, c.DailyChange) {
			confidence += 15
			reasoning = append(reasoning, fmt.Sprintf("%s pattern aligned with %.1f%% move", c.Pattern.Direction, c.DailyChange))
		} else {
			confidence += 8
			reasoning = append(reasoning, fmt.Sprintf("Directional %s pattern", c.Pattern.Direction))
		}
	}

	// Volume confirmation
	switch {
	case c.VolumeRatio >= 2.0:
		confidence += 15
		reasoning = append(reasoning, fmt.Sprintf("Strong volume (%.1fx average)", c.VolumeRatio))
	case c.VolumeRatio >= 1.5:
		confidence += 10
		reasoning = append(reasoning, fmt.Sprintf("Elevated volume (%.1fx average)", c.VolumeRatio))
	case c.VolumeRatio >= 1.0:
		confidence += 5
		reasoning = append(reasoning, "Volume at or above average")
	}

	// News sentiment
	if aligned, present := sentimentSupport(c.Sentiment, c.Pattern.Direction); present {
		if aligned {
			confidence += 10
			reasoning = append(reasoning, string(c.Sentiment)+" news sentiment supports direction")
		} else {
			confidence += 5
			reasoning = append(reasoning, string(c.Sentiment)+" news sentiment")
		}
	}

	// Learned pattern adjustment, verbatim and possibly negative
	if c.Adjustment != 0 {
		confidence += c.Adjustment
		reasoning = append(reasoning, fmt.Sprintf("Historical pattern performance adjustment: %+d", c.Adjustment))
	}

	// Options flow
	switch {
	case c.Flow.FlowScore >= 70:
		confidence += 15
		reasoning = append(reasoning, fmt.Sprintf("Strong options flow (score %d)", c.Flow.FlowScore))
	case c.Flow.FlowScore >= 40:
		confidence += 10
		reasoning = append(reasoning, fmt.Sprintf("Building options flow (score %d)", c.Flow.FlowScore))
	case c.Flow.FlowScore >= 20:
		confidence += 5
		reasoning = append(reasoning, fmt.Sprintf("Some options activity (score %d)", c.Flow.FlowScore))
	}

	// Multi-timeframe confirmation dominates: agreement across views is
	// rewarded non-linearly
	if c.MTF != nil {
		switch c.MTF.ConfirmationCount {
		case 4:
			confidence += 40
			reasoning = append(reasoning, "Confirmed on all 4 timeframes")
		case 3:
			confidence += 30
			reasoning = append(reasoning, "Confirmed on 3 of 4 timeframes")
		case 2:
			confidence += 20
			reasoning = append(reasoning, "Confirmed on 2 of 4 timeframes")
		case 1:
			reasoning = append(reasoning, "Single timeframe confirmation only")
		}
	}

	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}

	return confidence, reasoning
}

func directionMatchesChange(direction patterns.Direction, change float64) bool {
	switch direction {
	case patterns.Bullish:
		return change > 0
	case patterns.Bearish:
		return change < 0
	}
	return false
}

// sentimentSupport reports (aligned, present). Neutral or empty sentiment
// is absent and contributes nothing.
func sentimentSupport(sentiment analysis.Sentiment, direction patterns.Direction) (bool, bool) {
	switch sentiment {
	case analysis.Positive:
		return direction == patterns.Bullish, true
	case analysis.Negative:
		return direction == patterns.Bearish, true
	}
	return false, false
}
