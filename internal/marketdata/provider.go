package marketdata

import (
	"context"
	"errors"
)

// Upstream failure taxonomy. ErrDataUnavailable is always recoverable by
// skipping the ticker or timeframe; ErrRateLimited gets one bounded retry
// before being treated the same way.
var (
	ErrDataUnavailable = errors.New("market data unavailable")
	ErrRateLimited     = errors.New("rate limited by upstream")
)

// Provider supplies historical bars, quotes, options chains, and headlines.
// Implementations must be safe for concurrent use.
type Provider interface {
	// FetchBars returns chronologically ordered OHLCV bars for the symbol.
	// Supported intervals: 1h, 1d, 1wk.
	FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error)

	// FetchQuote returns a near-real-time snapshot for the symbol.
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)

	// FetchOptionsChain returns calls/puts for the nearest expiration.
	FetchOptionsChain(ctx context.Context, symbol string) (*OptionsChain, error)

	// FetchNews returns up to limit recent headlines for the symbol.
	FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
}
