package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type cachedBars struct {
	bars      []Bar
	expiresAt time.Time
}

type cachedQuote struct {
	quote     *Quote
	expiresAt time.Time
}

// CachedProvider wraps a Provider with a mutex-protected TTL cache for bars
// and quotes. Entries are immutable within their TTL; a fresh fetch replaces
// the entry wholesale. Options chains and news are passed through uncached.
type CachedProvider struct {
	inner Provider
	ttl   time.Duration

	mu     sync.RWMutex
	bars   map[string]*cachedBars // key: symbol:period:interval
	quotes map[string]*cachedQuote
}

// NewCachedProvider creates a caching wrapper with the given TTL
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{
		inner:  inner,
		ttl:    ttl,
		bars:   make(map[string]*cachedBars),
		quotes: make(map[string]*cachedQuote),
	}
}

// FetchBars returns cached bars when fresh, otherwise fetches and caches
func (c *CachedProvider) FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error) {
	key := fmt.Sprintf("%s:%s:%s", symbol, period, interval)

	c.mu.RLock()
	entry, ok := c.bars[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.bars, nil
	}

	bars, err := c.inner.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.bars[key] = &cachedBars{bars: bars, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return bars, nil
}

// FetchQuote returns a cached quote when fresh, otherwise fetches and caches
func (c *CachedProvider) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	c.mu.RLock()
	entry, ok := c.quotes[symbol]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.quote, nil
	}

	quote, err := c.inner.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.quotes[symbol] = &cachedQuote{quote: quote, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return quote, nil
}

// FetchOptionsChain passes through to the wrapped provider
func (c *CachedProvider) FetchOptionsChain(ctx context.Context, symbol string) (*OptionsChain, error) {
	return c.inner.FetchOptionsChain(ctx, symbol)
}

// FetchNews passes through to the wrapped provider
func (c *CachedProvider) FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	return c.inner.FetchNews(ctx, symbol, limit)
}

// UpdateQuote stores a quote pushed from a live stream, replacing any cached
// snapshot. Implements the stream's sink.
func (c *CachedProvider) UpdateQuote(quote *Quote) {
	if quote == nil || quote.Symbol == "" {
		return
	}
	c.mu.Lock()
	c.quotes[quote.Symbol] = &cachedQuote{quote: quote, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// CleanupExpired removes stale entries. Called opportunistically by the
// scanner between batches; correctness does not depend on it.
func (c *CachedProvider) CleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.bars {
		if now.After(entry.expiresAt) {
			delete(c.bars, key)
		}
	}
	for key, entry := range c.quotes {
		if now.After(entry.expiresAt) {
			delete(c.quotes, key)
		}
	}
}
