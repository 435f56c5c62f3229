package analysis

import "math"

// SqueezeInputs holds the factors behind a short squeeze risk score
type SqueezeInputs struct {
	ShortInterest float64 // Percent of float sold short
	DailyChange   float64 // Percent move on the day
	VolumeRatio   float64 // Current volume vs average
	DaysToCover   float64 // Short shares / average volume
	FloatShares   float64
}

// RiskScore computes the 0-100 squeeze risk composite. Weights: short
// interest 30%, daily gain 25%, volume 20%, days-to-cover 15%, float size
// 10%. Rounded to one decimal.
func RiskScore(in SqueezeInputs) float64 {
	shortScore := math.Min(in.ShortInterest*2, 100)
	gainScore := math.Min(in.DailyChange*2, 100)
	volScore := math.Min(in.VolumeRatio*20, 100)

	var dtcScore float64
	switch {
	case in.DaysToCover < 1:
		dtcScore = in.DaysToCover * 20
	case in.DaysToCover <= 10:
		dtcScore = 100
	default:
		dtcScore = math.Max(100-(in.DaysToCover-10)*5, 0)
	}

	floatMillions := 999.0
	if in.FloatShares > 0 {
		floatMillions = in.FloatShares / 1_000_000
	}
	var floatScore float64
	switch {
	case floatMillions < 50:
		floatScore = 100
	case floatMillions < 100:
		floatScore = 80
	case floatMillions < 200:
		floatScore = 60
	case floatMillions < 500:
		floatScore = 40
	default:
		floatScore = 20
	}

	score := shortScore*0.30 + gainScore*0.25 + volScore*0.20 + dtcScore*0.15 + floatScore*0.10
	return math.Round(score*10) / 10
}
