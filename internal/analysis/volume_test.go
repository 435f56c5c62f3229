package analysis

import (
	"testing"
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

func volBars(volumes ...float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, len(volumes))
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, v := range volumes {
		bars[i] = marketdata.Bar{
			Open: 100, High: 101, Low: 99, Close: 100,
			Volume:    v,
			Timestamp: base.AddDate(0, 0, i),
		}
	}
	return bars
}

func TestAnalyzeVolumeExcludesCurrentBar(t *testing.T) {
	// 21 bars of 1000 plus a 5000 spike: the spike must not inflate its own
	// baseline
	volumes := make([]float64, 22)
	for i := range volumes {
		volumes[i] = 1000
	}
	volumes[21] = 5000

	profile := AnalyzeVolume(volBars(volumes...))
	if profile == nil {
		t.Fatal("Expected a profile")
	}
	if profile.AverageVolume != 1000 {
		t.Errorf("Baseline should exclude the current bar, got %.0f", profile.AverageVolume)
	}
	if profile.VolumeRatio != 5 {
		t.Errorf("Expected ratio 5, got %.1f", profile.VolumeRatio)
	}
}

func TestAnalyzeVolumeShortSeries(t *testing.T) {
	profile := AnalyzeVolume(volBars(1000, 2000, 3000))
	if profile == nil {
		t.Fatal("Expected a profile")
	}
	if profile.AverageVolume != 2000 {
		t.Errorf("Short series baseline should be the whole-series mean, got %.0f", profile.AverageVolume)
	}
}

func TestAnalyzeVolumeEmpty(t *testing.T) {
	if profile := AnalyzeVolume(nil); profile != nil {
		t.Errorf("Empty input should produce nil, got %+v", profile)
	}
}

func TestDailyChange(t *testing.T) {
	bars := volBars(1000, 1000)
	bars[0].Close = 100
	bars[1].Close = 110
	if got := DailyChange(bars); got != 10 {
		t.Errorf("Expected +10%%, got %.1f", got)
	}

	if got := DailyChange(bars[:1]); got != 0 {
		t.Errorf("Single bar should yield 0, got %.1f", got)
	}
}
