package analysis

import (
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// Resample aggregates bars into coarser buckets keyed by bucketStart:
// open = first, high = max, low = min, close = last, volume = sum.
// Input order is preserved; bars must be chronological.
func Resample(bars []marketdata.Bar, bucketStart func(time.Time) time.Time) []marketdata.Bar {
	if len(bars) == 0 {
		return nil
	}

	var out []marketdata.Bar
	var current *marketdata.Bar
	var currentKey time.Time

	for _, bar := range bars {
		key := bucketStart(bar.Timestamp)
		if current == nil || !key.Equal(currentKey) {
			if current != nil {
				out = append(out, *current)
			}
			copyBar := bar
			copyBar.Timestamp = key
			current = &copyBar
			currentKey = key
			continue
		}

		if bar.High > current.High {
			current.High = bar.High
		}
		if bar.Low < current.Low {
			current.Low = bar.Low
		}
		current.Close = bar.Close
		current.Volume += bar.Volume
	}
	if current != nil {
		out = append(out, *current)
	}

	return out
}

// FourHourBucket truncates a timestamp to its 4-hour bucket
func FourHourBucket(t time.Time) time.Time {
	return t.UTC().Truncate(4 * time.Hour)
}

// WeekBucket truncates a timestamp to the Monday starting its week
func WeekBucket(t time.Time) time.Time {
	t = t.UTC()
	day := t.Truncate(24 * time.Hour)
	weekday := int(day.Weekday())
	// Monday-based weeks; Sunday rolls back six days
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}
