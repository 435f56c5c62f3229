package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// newDeadCache points at a port nothing listens on so tests exercise the
// degraded path without a Redis server
func newDeadCache(t *testing.T) *ScanCache {
	t.Helper()
	c := NewScanCache(Config{Address: "127.0.0.1:1"}, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestUnreachableRedisReportsUnhealthy(t *testing.T) {
	c := newDeadCache(t)
	if c.Healthy() {
		t.Error("Cache without a reachable Redis should report unhealthy")
	}
}

func TestDegradedWritesReturnErrors(t *testing.T) {
	c := newDeadCache(t)
	ctx := context.Background()

	if err := c.SetLatestScan(ctx, "daily_plays", map[string]int{"candidates": 3}); err == nil {
		t.Error("SetLatestScan should surface the connection error")
	}
	if err := c.SetQuote(ctx, "AAPL", map[string]float64{"last": 187.5}); err == nil {
		t.Error("SetQuote should surface the connection error")
	}
	if c.Healthy() {
		t.Error("Failed writes must keep the cache unhealthy")
	}
}

func TestDegradedReadIsAMiss(t *testing.T) {
	c := newDeadCache(t)

	var out map[string]int
	if err := c.GetLatestScan(context.Background(), "squeeze", &out); err == nil {
		t.Error("GetLatestScan without Redis should return an error the caller treats as a miss")
	}
	if out != nil {
		t.Error("A miss must not populate the destination")
	}
}

func TestSetLatestScanRejectsUnencodableSnapshot(t *testing.T) {
	c := newDeadCache(t)

	if err := c.SetLatestScan(context.Background(), "squeeze", make(chan int)); err == nil {
		t.Error("Unencodable snapshots should fail before touching Redis")
	}
}
