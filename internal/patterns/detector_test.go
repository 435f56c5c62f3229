package patterns

import (
	"testing"
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

func bar(open, high, low, close, volume float64) marketdata.Bar {
	return marketdata.Bar{
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
		Timestamp: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

// TestThreeOneDetection tests the 3-1 composite: an outside bar engulfing
// its predecessor, followed by an inside bar with real contraction
func TestThreeOneDetection(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(9, 10, 8, 9.5, 1000),   // base bar
		bar(8, 12, 7, 11, 2000),    // outside bar, engulfs base on both sides
		bar(10, 11, 9, 10.5, 1500), // inside bar, range 2 vs outside range 5
	}

	found, pattern := detector.CheckPattern(bars)
	if !found {
		t.Fatal("Should detect 3-1 pattern")
	}
	if pattern.Kind != ThreeOne {
		t.Errorf("Expected 3-1 pattern, got %s", pattern.Kind)
	}
	if pattern.Direction != Bullish {
		t.Errorf("Expected bullish direction from the inside bar close, got %s", pattern.Direction)
	}
	if pattern.Three == nil || pattern.One == nil {
		t.Error("3-1 pattern should carry both defining bars")
	}
	if pattern.Three != nil && pattern.Three.High != 12 {
		t.Errorf("Three snapshot should be the outside bar, got high %.1f", pattern.Three.High)
	}
}

// TestInsideBarWithoutOutside tests that an inside bar after a non-engulfing
// predecessor downgrades to the standalone inside bar
func TestInsideBarWithoutOutside(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(9, 12.5, 7.6, 9.5, 1000), // high above the next bar, so no engulfment
		bar(8, 12, 7, 11, 2000),
		bar(10, 11, 9, 10.5, 1500),
	}

	found, pattern := detector.CheckPattern(bars)
	if !found {
		t.Fatal("Should still detect the standalone inside bar")
	}
	if pattern.Kind != InsideBar {
		t.Errorf("Expected inside bar, got %s", pattern.Kind)
	}
}

// TestInsideBarNoiseRejected tests that a bar contained but barely smaller
// than its predecessor does not count
func TestInsideBarNoiseRejected(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(9, 10, 8, 9.5, 1000),
		bar(9.02, 9.98, 8.06, 9.4, 1000), // range 1.92 > 2 * 0.95
	}

	found, _ := detector.CheckPattern(bars)
	if found {
		t.Error("Near-duplicate contained bar should not register as inside bar")
	}
}

func TestMicroBarRejected(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(100, 101, 99, 100, 1000),
		bar(100, 100.02, 99.98, 100.01, 500), // range 0.04% of close
	}

	found, _ := detector.CheckPattern(bars)
	if found {
		t.Error("Micro-range bar should not register as a pattern")
	}
}

func TestOutsideBarMarginRequired(t *testing.T) {
	detector := NewDetector()

	// Previous pokes above by only a hair on the high side
	bars := []marketdata.Bar{
		bar(9, 10, 8, 9.5, 1000),
		bar(8, 10.001, 6, 7, 2000), // high margin 0.001 < 2% of range 2
		bar(8.5, 9.5, 7.5, 9, 1500),
	}

	found, pattern := detector.CheckPattern(bars)
	if found && pattern.Kind == ThreeOne {
		t.Error("Outside bar without a real high-side margin should not qualify for 3-1")
	}
}

func TestMalformedBarsRejected(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name string
		bars []marketdata.Bar
	}{
		{"inverted high/low", []marketdata.Bar{bar(9, 10, 8, 9.5, 1000), bar(9, 8, 10, 9.5, 1000)}},
		{"zero prices", []marketdata.Bar{bar(9, 10, 8, 9.5, 1000), bar(0, 0, 0, 0, 1000)}},
		{"single bar", []marketdata.Bar{bar(9, 10, 8, 9.5, 1000)}},
		{"empty", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if found, _ := detector.CheckPattern(tc.bars); found {
				t.Error("Should not detect a pattern")
			}
		})
	}
}

func TestDetectMomentum(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(100, 101, 99, 100, 1000),
		bar(100, 102, 99, 101, 1000),
		bar(101, 102, 100, 101, 1000),
		bar(101, 103, 100, 102, 1000),
		bar(102, 106, 101, 105, 3000), // +2.9% on triple volume
	}

	found, pattern := detector.DetectMomentum(bars)
	if !found {
		t.Fatal("Should detect momentum bar")
	}
	if pattern.Kind != Momentum {
		t.Errorf("Expected momentum, got %s", pattern.Kind)
	}
	if pattern.Direction != Bullish {
		t.Errorf("Expected bullish momentum, got %s", pattern.Direction)
	}

	// Same move on average volume is not momentum
	bars[4].Volume = 1000
	if found, _ := detector.DetectMomentum(bars); found {
		t.Error("Momentum requires above-average volume")
	}
}

func TestDetectMomentumNeedsHistory(t *testing.T) {
	detector := NewDetector()

	bars := []marketdata.Bar{
		bar(100, 101, 99, 100, 1000),
		bar(102, 106, 101, 105, 3000),
	}
	if found, _ := detector.DetectMomentum(bars); found {
		t.Error("Momentum needs at least 5 bars of history")
	}
}
