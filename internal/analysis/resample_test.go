package analysis

import (
	"testing"
	"time"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

func hourBar(hour int, open, high, low, close, volume float64) marketdata.Bar {
	return marketdata.Bar{
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
		Timestamp: time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC),
	}
}

func TestResampleFourHour(t *testing.T) {
	bars := []marketdata.Bar{
		hourBar(0, 10, 11, 9, 10.5, 100),
		hourBar(1, 10.5, 12, 10, 11, 200),
		hourBar(2, 11, 11.5, 10.5, 11.2, 150),
		hourBar(3, 11.2, 11.8, 8.5, 9, 250),
		hourBar(4, 9, 9.5, 8.8, 9.2, 300), // next bucket
	}

	out := Resample(bars, FourHourBucket)
	if len(out) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(out))
	}

	first := out[0]
	if first.Open != 10 {
		t.Errorf("Bucket open should be the first bar's open, got %.1f", first.Open)
	}
	if first.High != 12 {
		t.Errorf("Bucket high should be the max, got %.1f", first.High)
	}
	if first.Low != 8.5 {
		t.Errorf("Bucket low should be the min, got %.1f", first.Low)
	}
	if first.Close != 9 {
		t.Errorf("Bucket close should be the last bar's close, got %.1f", first.Close)
	}
	if first.Volume != 700 {
		t.Errorf("Bucket volume should be the sum, got %.0f", first.Volume)
	}
	if !first.Timestamp.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Bucket timestamp should be the bucket start, got %v", first.Timestamp)
	}
}

func TestResampleEmpty(t *testing.T) {
	if out := Resample(nil, FourHourBucket); out != nil {
		t.Errorf("Empty input should resample to nil, got %v", out)
	}
}

func TestWeekBucket(t *testing.T) {
	tests := []struct {
		day  time.Time
		want time.Time
	}{
		// 2026-03-02 is a Monday
		{time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		// Sunday rolls back to the prior Monday
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		if got := WeekBucket(tc.day); !got.Equal(tc.want) {
			t.Errorf("WeekBucket(%v) = %v, want %v", tc.day, got, tc.want)
		}
	}
}
