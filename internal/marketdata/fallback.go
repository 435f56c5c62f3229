package marketdata

import (
	"context"

	"github.com/rs/zerolog"
)

// FallbackProvider tries each configured provider in order and serves the
// first successful response. Callers never learn which provider answered
// beyond the informational source tag on quotes.
type FallbackProvider struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewFallbackProvider creates a provider chain. At least one provider is
// required; the rest are alternates.
func NewFallbackProvider(logger zerolog.Logger, providers ...Provider) *FallbackProvider {
	return &FallbackProvider{
		providers: providers,
		logger:    logger.With().Str("component", "FallbackProvider").Logger(),
	}
}

// FetchBars tries each provider until one returns bars
func (f *FallbackProvider) FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error) {
	for i, p := range f.providers {
		bars, err := p.FetchBars(ctx, symbol, period, interval)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug().Str("symbol", symbol).Int("provider", i).Err(err).Msg("bars fetch failed, trying next provider")
	}
	return nil, ErrDataUnavailable
}

// FetchQuote tries each provider until one returns a quote
func (f *FallbackProvider) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	for i, p := range f.providers {
		quote, err := p.FetchQuote(ctx, symbol)
		if err == nil && quote != nil {
			return quote, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug().Str("symbol", symbol).Int("provider", i).Err(err).Msg("quote fetch failed, trying next provider")
	}
	return nil, ErrDataUnavailable
}

// FetchOptionsChain tries each provider until one returns a chain
func (f *FallbackProvider) FetchOptionsChain(ctx context.Context, symbol string) (*OptionsChain, error) {
	for _, p := range f.providers {
		chain, err := p.FetchOptionsChain(ctx, symbol)
		if err == nil && chain != nil {
			return chain, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrDataUnavailable
}

// FetchNews tries each provider; an empty headline list is a valid answer
func (f *FallbackProvider) FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	for _, p := range f.providers {
		news, err := p.FetchNews(ctx, symbol, limit)
		if err == nil {
			return news, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrDataUnavailable
}
