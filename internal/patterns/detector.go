package patterns

import (
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// Detector classifies the last 1-3 bars of a series into a pattern variant.
// Thresholds exist to keep near-duplicate bars from registering as false
// patterns: a genuine inside bar must contract, a genuine outside bar must
// expand on both sides by a real margin.
type Detector struct {
	insideMaxRangeRatio    float64 // Inside bar range must be <= this fraction of the prior range
	microRangeRatio        float64 // Range/close below this is a micro-bar, not a pattern
	outsideMinExpansion    float64 // Outside bar range must be >= this multiple of the prior range
	outsideMinSideMargin   float64 // Each side must poke out by this fraction of the prior range
	threeOneMaxContraction float64 // 3-1 inside bar range must be < this fraction of the outside range
	momentumMinChange      float64 // Minimum close/open move for a momentum bar
}

// NewDetector creates a detector with the standard thresholds
func NewDetector() *Detector {
	return &Detector{
		insideMaxRangeRatio:    0.95,
		microRangeRatio:        0.001,
		outsideMinExpansion:    1.1,
		outsideMinSideMargin:   0.02,
		threeOneMaxContraction: 0.8,
		momentumMinChange:      0.02,
	}
}

// CheckPattern classifies the tail of a chronologically ordered bar series.
// Priority: 3-1 composite, then standalone inside bar, then none. With fewer
// than 3 bars only the inside bar can be detected.
func (d *Detector) CheckPattern(bars []marketdata.Bar) (bool, Pattern) {
	if len(bars) < 2 {
		return false, NonePattern()
	}

	current := bars[len(bars)-1]
	previous := bars[len(bars)-2]

	// Malformed data never counts as a pattern
	if !wellFormed(current) || !wellFormed(previous) {
		return false, NonePattern()
	}

	inside := d.isInsideBar(current, previous)

	if len(bars) >= 3 {
		beforePrev := bars[len(bars)-3]
		if wellFormed(beforePrev) && inside && d.isOutsideBar(previous, beforePrev) {
			currentRange := current.High - current.Low
			previousRange := previous.High - previous.Low
			if currentRange < previousRange*d.threeOneMaxContraction {
				return true, Pattern{
					Kind:      ThreeOne,
					Direction: closeDirection(current),
					Three:     snapshot(previous),
					One:       snapshot(current),
				}
			}
		}
	}

	if inside {
		return true, Pattern{
			Kind:      InsideBar,
			Direction: closeDirection(current),
			One:       snapshot(current),
		}
	}

	return false, NonePattern()
}

// DetectMomentum flags a strong directional bar when no structural pattern
// matched: the last bar moved at least 2% open-to-close on above-average
// volume. Needs enough history for a meaningful volume baseline.
func (d *Detector) DetectMomentum(bars []marketdata.Bar) (bool, Pattern) {
	if len(bars) < 5 {
		return false, NonePattern()
	}

	current := bars[len(bars)-1]
	if !wellFormed(current) || current.Open <= 0 {
		return false, NonePattern()
	}

	change := (current.Close - current.Open) / current.Open
	if change < d.momentumMinChange && change > -d.momentumMinChange {
		return false, NonePattern()
	}

	var volumeSum float64
	for _, bar := range bars[:len(bars)-1] {
		volumeSum += bar.Volume
	}
	avgVolume := volumeSum / float64(len(bars)-1)
	if avgVolume <= 0 || current.Volume <= avgVolume {
		return false, NonePattern()
	}

	return true, Pattern{
		Kind:      Momentum,
		Direction: closeDirection(current),
		One:       snapshot(current),
	}
}

// isInsideBar checks for a strictly contained bar with genuine contraction.
// Ranges within 5% of the prior bar are treated as noise, and bars whose
// whole range is under 0.1% of price are too small to mean anything.
func (d *Detector) isInsideBar(current, previous marketdata.Bar) bool {
	if current.High >= previous.High || current.Low <= previous.Low {
		return false
	}

	currentRange := current.High - current.Low
	previousRange := previous.High - previous.Low
	if previousRange <= 0 {
		return false
	}
	if currentRange > previousRange*d.insideMaxRangeRatio {
		return false
	}
	if current.Close <= 0 || currentRange/current.Close < d.microRangeRatio {
		return false
	}

	return true
}

// isOutsideBar checks that previous strictly engulfs beforePrev with real
// expansion on both sides, so a bar barely poking out on one edge does not
// qualify.
func (d *Detector) isOutsideBar(previous, beforePrev marketdata.Bar) bool {
	if previous.High <= beforePrev.High || previous.Low >= beforePrev.Low {
		return false
	}

	previousRange := previous.High - previous.Low
	beforeRange := beforePrev.High - beforePrev.Low
	if beforeRange <= 0 {
		return false
	}
	if previousRange < beforeRange*d.outsideMinExpansion {
		return false
	}

	margin := beforeRange * d.outsideMinSideMargin
	if previous.High-beforePrev.High < margin {
		return false
	}
	if beforePrev.Low-previous.Low < margin {
		return false
	}

	return true
}

// wellFormed rejects bars with non-positive OHLC or inverted high/low
func wellFormed(bar marketdata.Bar) bool {
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return false
	}
	return bar.High >= bar.Low
}

func closeDirection(bar marketdata.Bar) Direction {
	if bar.Close > bar.Open {
		return Bullish
	}
	return Bearish
}
