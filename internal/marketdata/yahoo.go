package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// YahooClient implements Provider against the Yahoo Finance JSON endpoints.
// All requests pass through the shared RequestGate and RetryPolicy.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	gate       *RequestGate
	retry      RetryPolicy
	logger     zerolog.Logger
}

// NewYahooClient creates a client for the given base URL. The gate is shared
// across clients hitting the same upstream so concurrent workers cannot
// burst past its quota.
func NewYahooClient(baseURL string, gate *RequestGate, retry RetryPolicy, logger zerolog.Logger) *YahooClient {
	return &YahooClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: retry.AttemptTimeout},
		gate:       gate,
		retry:      retry,
		logger:     logger.With().Str("component", "YahooClient").Logger(),
	}
}

// chartResponse mirrors the v8 chart endpoint payload. Quote arrays may hold
// nulls for halted sessions, hence the pointer elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchBars fetches OHLCV history via the chart endpoint
func (c *YahooClient) FetchBars(ctx context.Context, symbol, period, interval string) ([]Bar, error) {
	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var parsed chartResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if parsed.Chart.Error != nil || len(parsed.Chart.Result) == 0 {
		return nil, ErrDataUnavailable
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrDataUnavailable
	}
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		// Null slots appear for halted or partial sessions; skip them
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		bar := Bar{
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Timestamp: time.Unix(ts, 0).UTC(),
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, ErrDataUnavailable
	}
	return bars, nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			Bid                        float64 `json:"bid"`
			Ask                        float64 `json:"ask"`
			RegularMarketVolume        float64 `json:"regularMarketVolume"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			FloatShares                float64 `json:"floatShares"`
			SharesOutstanding          float64 `json:"sharesOutstanding"`
			MarketCap                  float64 `json:"marketCap"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// FetchQuote fetches a near-real-time snapshot
func (c *YahooClient) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)
	endpoint := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, params.Encode())

	var parsed quoteResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, ErrDataUnavailable
	}
	r := parsed.QuoteResponse.Result[0]

	company := r.LongName
	if company == "" {
		company = r.ShortName
	}
	floatShares := r.FloatShares
	if floatShares == 0 {
		floatShares = r.SharesOutstanding
	}

	return &Quote{
		Symbol:        r.Symbol,
		Company:       company,
		Last:          r.RegularMarketPrice,
		Bid:           r.Bid,
		Ask:           r.Ask,
		Volume:        r.RegularMarketVolume,
		ChangePercent: r.RegularMarketChangePercent,
		FloatShares:   floatShares,
		MarketCap:     r.MarketCap,
		WeekHigh52:    r.FiftyTwoWeekHigh,
		WeekLow52:     r.FiftyTwoWeekLow,
		Source:        c.baseURL,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Options          []struct {
				ExpirationDate int64 `json:"expirationDate"`
				Calls          []struct {
					ContractSymbol string  `json:"contractSymbol"`
					Strike         float64 `json:"strike"`
					LastPrice      float64 `json:"lastPrice"`
					Bid            float64 `json:"bid"`
					Ask            float64 `json:"ask"`
					Volume         float64 `json:"volume"`
					OpenInterest   float64 `json:"openInterest"`
				} `json:"calls"`
				Puts []struct {
					ContractSymbol string  `json:"contractSymbol"`
					Strike         float64 `json:"strike"`
					LastPrice      float64 `json:"lastPrice"`
					Bid            float64 `json:"bid"`
					Ask            float64 `json:"ask"`
					Volume         float64 `json:"volume"`
					OpenInterest   float64 `json:"openInterest"`
				} `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// FetchOptionsChain fetches calls/puts for the nearest expiration
func (c *YahooClient) FetchOptionsChain(ctx context.Context, symbol string) (*OptionsChain, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", c.baseURL, url.PathEscape(symbol))

	var parsed optionsResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.OptionChain.Result) == 0 || len(parsed.OptionChain.Result[0].Options) == 0 {
		return nil, ErrDataUnavailable
	}
	result := parsed.OptionChain.Result[0]
	nearest := result.Options[0]

	chain := &OptionsChain{
		Symbol:     symbol,
		Expiration: time.Unix(nearest.ExpirationDate, 0).UTC(),
	}
	for _, row := range nearest.Calls {
		chain.Calls = append(chain.Calls, OptionContract{
			ContractSymbol: row.ContractSymbol,
			Strike:         row.Strike,
			LastPrice:      row.LastPrice,
			Bid:            row.Bid,
			Ask:            row.Ask,
			Volume:         row.Volume,
			OpenInterest:   row.OpenInterest,
		})
	}
	for _, row := range nearest.Puts {
		chain.Puts = append(chain.Puts, OptionContract{
			ContractSymbol: row.ContractSymbol,
			Strike:         row.Strike,
			LastPrice:      row.LastPrice,
			Bid:            row.Bid,
			Ask:            row.Ask,
			Volume:         row.Volume,
			OpenInterest:   row.OpenInterest,
		})
	}
	return chain, nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchNews fetches recent headlines via the search endpoint
func (c *YahooClient) FetchNews(ctx context.Context, symbol string, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("newsCount", fmt.Sprintf("%d", limit))
	params.Set("quotesCount", "0")
	endpoint := fmt.Sprintf("%s/v1/finance/search?%s", c.baseURL, params.Encode())

	var parsed searchResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	news := make([]NewsItem, 0, len(parsed.News))
	for _, item := range parsed.News {
		if len(news) >= limit {
			break
		}
		news = append(news, NewsItem{
			Title:       item.Title,
			Publisher:   item.Publisher,
			PublishedAt: time.Unix(item.ProviderPublishTime, 0).UTC(),
		})
	}
	return news, nil
}

// getJSON performs a gated, retried GET and decodes the JSON body into out
func (c *YahooClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.gate.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("error building request: %w", err)
		}
		req.Header.Set("User-Agent", "lemonshortbot/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("error fetching %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case resp.StatusCode == http.StatusNotFound:
			return ErrDataUnavailable
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status %d from %s: %w", resp.StatusCode, endpoint, ErrDataUnavailable)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response: %w", err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error parsing response: %w", err)
		}
		return nil
	})
}
