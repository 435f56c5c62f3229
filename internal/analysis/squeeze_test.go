package analysis

import "testing"

func TestRiskScoreHighPressure(t *testing.T) {
	// Every factor maxed: 30+25+20+15+10
	score := RiskScore(SqueezeInputs{
		ShortInterest: 50,
		DailyChange:   50,
		VolumeRatio:   5,
		DaysToCover:   5,
		FloatShares:   10_000_000,
	})
	if score != 100 {
		t.Errorf("Expected 100, got %.1f", score)
	}
}

func TestRiskScoreModerate(t *testing.T) {
	score := RiskScore(SqueezeInputs{
		ShortInterest: 20, // 40 * .30 = 12
		DailyChange:   10, // 20 * .25 = 5
		VolumeRatio:   2,  // 40 * .20 = 8
		DaysToCover:   3,  // 100 * .15 = 15
		FloatShares:   300_000_000,
	}) // float 40 * .10 = 4
	if score != 44.0 {
		t.Errorf("Expected 44.0, got %.1f", score)
	}
}

func TestRiskScoreUnknownFloatScoresLow(t *testing.T) {
	with := RiskScore(SqueezeInputs{ShortInterest: 30, FloatShares: 10_000_000})
	without := RiskScore(SqueezeInputs{ShortInterest: 30})
	if without >= with {
		t.Errorf("Unknown float should score lower than a small known float: %.1f vs %.1f", without, with)
	}
}

func TestRiskScoreHighDaysToCoverDecays(t *testing.T) {
	low := RiskScore(SqueezeInputs{DaysToCover: 30, FloatShares: 999_000_000})
	mid := RiskScore(SqueezeInputs{DaysToCover: 10, FloatShares: 999_000_000})
	if low >= mid {
		t.Errorf("Days-to-cover past the plateau should decay: %.1f vs %.1f", low, mid)
	}
}
