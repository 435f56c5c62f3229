package marketdata

import (
	"context"
	"sync"
	"time"
)

// RequestGate enforces a minimum interval between upstream requests. Every
// fetch, regardless of goroutine, must pass through Wait before issuing a
// request so concurrent workers cannot burst past upstream quotas.
type RequestGate struct {
	mu       sync.Mutex
	minGap   time.Duration
	lastSent time.Time
}

// NewRequestGate creates a gate with the given minimum inter-request gap
func NewRequestGate(minGap time.Duration) *RequestGate {
	if minGap <= 0 {
		minGap = 100 * time.Millisecond
	}
	return &RequestGate{minGap: minGap}
}

// Wait blocks until the caller may issue a request, or until ctx is done.
// The slot is reserved under the lock so waiters are serialized fairly.
func (g *RequestGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	next := g.lastSent.Add(g.minGap)
	if next.Before(now) {
		next = now
	}
	g.lastSent = next
	g.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
