package scoring

import (
	"strings"
	"testing"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
)

func TestScoreBaseline(t *testing.T) {
	scorer := NewScorer()

	confidence, reasoning := scorer.Score(Candidate{
		Symbol:  "TEST",
		Pattern: patterns.NonePattern(),
	})
	if confidence != BaseConfidence {
		t.Errorf("No signals should stay at base confidence, got %d", confidence)
	}
	if len(reasoning) != 0 {
		t.Errorf("No signals should produce no reasoning, got %v", reasoning)
	}
}

func TestScoreThreeOneAligned(t *testing.T) {
	scorer := NewScorer()

	confidence, reasoning := scorer.Score(Candidate{
		Symbol:      "TEST",
		Pattern:     patterns.Pattern{Kind: patterns.ThreeOne, Direction: patterns.Bullish},
		DailyChange: 3.5,
		VolumeRatio: 2.1,
	})
	// 50 base + 15 pattern + 15 aligned direction + 15 strong volume
	if confidence != 95 {
		t.Errorf("Expected 95, got %d", confidence)
	}
	if len(reasoning) != 3 {
		t.Errorf("Expected 3 reasoning entries, got %v", reasoning)
	}
}

func TestScoreClampedAtCeiling(t *testing.T) {
	scorer := NewScorer()

	confidence, _ := scorer.Score(Candidate{
		Symbol:      "TEST",
		Pattern:     patterns.Pattern{Kind: patterns.ThreeOne, Direction: patterns.Bullish},
		RiskScore:   90,
		DailyChange: 25,
		VolumeRatio: 3,
		Sentiment:   analysis.Positive,
		Adjustment:  5,
		Flow:        analysis.OptionsFlow{FlowScore: 90},
		MTF:         &analysis.MultiTimeframeResult{ConfirmationCount: 4},
	})
	if confidence != MaxConfidence {
		t.Errorf("Stacked signals must clamp at %d, got %d", MaxConfidence, confidence)
	}
}

func TestScoreRiskScoreBeatsPattern(t *testing.T) {
	scorer := NewScorer()

	// Risk score >= 80 takes the pattern-strength slot even over a 3-1
	_, reasoning := scorer.Score(Candidate{
		Symbol:    "TEST",
		Pattern:   patterns.Pattern{Kind: patterns.ThreeOne, Direction: patterns.Neutral},
		RiskScore: 85,
	})
	if len(reasoning) == 0 || !strings.Contains(reasoning[0], "squeeze risk") {
		t.Errorf("Risk score should head the reasoning, got %v", reasoning)
	}
}

func TestScoreNegativeAdjustmentApplied(t *testing.T) {
	scorer := NewScorer()

	with, _ := scorer.Score(Candidate{
		Symbol:     "TEST",
		Pattern:    patterns.Pattern{Kind: patterns.InsideBar, Direction: patterns.Neutral},
		Adjustment: -5,
	})
	without, _ := scorer.Score(Candidate{
		Symbol:  "TEST",
		Pattern: patterns.Pattern{Kind: patterns.InsideBar, Direction: patterns.Neutral},
	})
	if with != without-5 {
		t.Errorf("Adjustment should apply verbatim: %d vs %d", with, without)
	}
}

func TestScoreSentimentAlignment(t *testing.T) {
	scorer := NewScorer()

	aligned, _ := scorer.Score(Candidate{
		Symbol:    "TEST",
		Pattern:   patterns.Pattern{Kind: patterns.InsideBar, Direction: patterns.Bearish},
		Sentiment: analysis.Negative,
	})
	opposed, _ := scorer.Score(Candidate{
		Symbol:    "TEST",
		Pattern:   patterns.Pattern{Kind: patterns.InsideBar, Direction: patterns.Bearish},
		Sentiment: analysis.Positive,
	})
	if aligned != opposed+5 {
		t.Errorf("Aligned sentiment should add 10, opposed 5: %d vs %d", aligned, opposed)
	}
}

func TestScoreMTFTiers(t *testing.T) {
	scorer := NewScorer()

	base := Candidate{Symbol: "TEST", Pattern: patterns.NonePattern()}

	tiers := map[int]int{4: 40, 3: 30, 2: 20, 1: 0, 0: 0}
	for count, bonus := range tiers {
		c := base
		c.MTF = &analysis.MultiTimeframeResult{ConfirmationCount: count}
		confidence, _ := scorer.Score(c)
		if confidence != BaseConfidence+bonus {
			t.Errorf("MTF count %d: expected %d, got %d", count, BaseConfidence+bonus, confidence)
		}
	}
}
