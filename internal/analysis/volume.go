package analysis

import "github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"

// VolumeProfile represents volume analysis for the latest bar
type VolumeProfile struct {
	CurrentVolume float64 `json:"current_volume"`
	AverageVolume float64 `json:"average_volume"`
	VolumeRatio   float64 `json:"volume_ratio"` // Current / Average
	IsHighVolume  bool    `json:"is_high_volume"`
}

// AnalyzeVolume computes the volume ratio of the latest bar against a
// 20-bar average. The current bar is excluded from the baseline when enough
// history exists so a spike cannot inflate its own benchmark.
func AnalyzeVolume(bars []marketdata.Bar) *VolumeProfile {
	if len(bars) == 0 {
		return nil
	}

	current := bars[len(bars)-1].Volume

	var sum float64
	var count int
	if len(bars) > 20 {
		window := bars[len(bars)-21 : len(bars)-1]
		for _, bar := range window {
			sum += bar.Volume
		}
		count = len(window)
	} else {
		for _, bar := range bars {
			sum += bar.Volume
		}
		count = len(bars)
	}

	avg := sum / float64(count)
	ratio := 1.0
	if avg > 0 {
		ratio = current / avg
	}

	return &VolumeProfile{
		CurrentVolume: current,
		AverageVolume: avg,
		VolumeRatio:   ratio,
		IsHighVolume:  ratio > 2.0,
	}
}

// DailyChange returns the percent change of the last close against the
// previous close. Needs at least two bars.
func DailyChange(bars []marketdata.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	previous := bars[len(bars)-2].Close
	if previous <= 0 {
		return 0
	}
	current := bars[len(bars)-1].Close
	return (current - previous) / previous * 100
}
