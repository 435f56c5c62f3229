package scanner

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/database"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scoring"
)

// fakeProvider serves canned data per symbol. Symbols in failBars get no
// history at all.
type fakeProvider struct {
	mu        sync.Mutex
	failBars  map[string]bool
	thinChain map[string]bool
}

func (p *fakeProvider) FetchBars(_ context.Context, symbol, _, interval string) ([]marketdata.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failBars[symbol] {
		return nil, marketdata.ErrDataUnavailable
	}

	// A rising daily series ending in a 3-1: wide outside bar then a tight
	// inside bar closing up
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	if interval == marketdata.Interval1h {
		return nil, marketdata.ErrDataUnavailable
	}
	var bars []marketdata.Bar
	for i := 0; i < 25; i++ {
		c := 100 + float64(i)
		bars = append(bars, marketdata.Bar{
			Open: c - 0.5, High: c + 1, Low: c - 1.5, Close: c,
			Volume:    1000,
			Timestamp: start.AddDate(0, 0, i),
		})
	}
	bars = append(bars,
		marketdata.Bar{Open: 124, High: 130, Low: 121, Close: 128, Volume: 2500, Timestamp: start.AddDate(0, 0, 25)},
		marketdata.Bar{Open: 126, High: 128, Low: 125, Close: 127.5, Volume: 1800, Timestamp: start.AddDate(0, 0, 26)},
	)
	return bars, nil
}

func (p *fakeProvider) FetchQuote(_ context.Context, symbol string) (*marketdata.Quote, error) {
	return &marketdata.Quote{Symbol: symbol, Company: symbol + " Inc", Last: 127.5}, nil
}

func (p *fakeProvider) FetchOptionsChain(_ context.Context, symbol string) (*marketdata.OptionsChain, error) {
	p.mu.Lock()
	thin := p.thinChain[symbol]
	p.mu.Unlock()
	if thin {
		return &marketdata.OptionsChain{Symbol: symbol}, nil
	}
	return &marketdata.OptionsChain{
		Symbol: symbol,
		Calls: []marketdata.OptionContract{
			{Strike: 130, Bid: 2.00, Ask: 2.08, Volume: 300, OpenInterest: 900},
			{Strike: 135, Bid: 1.00, Ask: 1.06, Volume: 200, OpenInterest: 600},
			{Strike: 140, Bid: 0.50, Ask: 0.54, Volume: 100, OpenInterest: 300},
		},
	}, nil
}

func (p *fakeProvider) FetchNews(_ context.Context, _ string, _ int) ([]marketdata.NewsItem, error) {
	return []marketdata.NewsItem{{Title: "Shares rally on strong growth"}}, nil
}

// fakeStore records writes in memory. Writes fail on a dead context the way
// a real pool would.
type fakeStore struct {
	mu          sync.Mutex
	recs        []database.Recommendation
	scans       []database.ScanRecord
	adjustments map[string]int
}

func (s *fakeStore) InsertRecommendation(ctx context.Context, rec *database.Recommendation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return int64(len(s.recs)), nil
}

func (s *fakeStore) InsertScanRecord(ctx context.Context, record *database.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans = append(s.scans, *record)
	return nil
}

func (s *fakeStore) GetPatternAdjustments(_ context.Context) (map[string]int, error) {
	if s.adjustments == nil {
		return map[string]int{}, nil
	}
	return s.adjustments, nil
}

type fakeTrigger struct {
	mu    sync.Mutex
	count int
}

func (t *fakeTrigger) TriggerNow() {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
}

func newTestScanner(provider marketdata.Provider, store Store, trigger BacktestTrigger) *Scanner {
	detector := patterns.NewDetector()
	logger := zerolog.Nop()
	return NewScanner(
		provider,
		detector,
		analysis.NewMultiTimeframeAnalyzer(provider, detector, logger),
		analysis.NewFlowAnalyzer(),
		scoring.NewScorer(),
		store,
		nil,
		trigger,
		Config{WorkerCount: 4, MinCandidates: 1, MaxCandidates: 5},
		logger,
	)
}

func TestScanSqueezeSource(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{}
	trigger := &fakeTrigger{}
	sc := newTestScanner(provider, store, trigger)

	result, err := sc.Scan(context.Background(), Request{
		Source:           SourceSqueeze,
		ExpirationWindow: "1-2 weeks",
		Tickers: []TickerInput{
			{Ticker: "SQZA", ShortInterest: 40},
			{Ticker: "SQZB", ShortInterest: 35},
		},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TickersScanned != 2 {
		t.Errorf("Squeeze scans must not merge the default universe, scanned %d", result.TickersScanned)
	}
	if len(result.Candidates) == 0 {
		t.Fatal("Expected candidates")
	}
	for i := 1; i < len(result.Candidates); i++ {
		if result.Candidates[i].Confidence > result.Candidates[i-1].Confidence {
			t.Error("Candidates must be sorted by confidence descending")
		}
	}

	c := result.Candidates[0]
	if c.OptionType != analysis.Call {
		t.Errorf("Bullish setup should map to a CALL, got %s", c.OptionType)
	}
	if c.StrikePrice != 130 {
		t.Errorf("Nearest OTM strike should be 130, got %.0f", c.StrikePrice)
	}
	if c.Pattern.Kind != patterns.ThreeOne {
		t.Errorf("Expected the 3-1 pattern, got %s", c.Pattern.Kind)
	}
	if c.RiskScore <= 0 {
		t.Error("Squeeze candidates should carry a risk score")
	}

	if trigger.count != 1 {
		t.Errorf("Scan should trigger one backtest pass, got %d", trigger.count)
	}
	if len(store.scans) != 1 {
		t.Fatalf("Expected one scan history row, got %d", len(store.scans))
	}
	if store.scans[0].ResultsCount != len(result.Candidates) {
		t.Error("Scan record should count returned candidates")
	}
	if len(store.recs) != len(result.Candidates) {
		t.Errorf("Every returned candidate should be persisted, got %d of %d", len(store.recs), len(result.Candidates))
	}
}

func TestScanDailyPlaysMergesUniverse(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{}
	sc := newTestScanner(provider, store, nil)

	result, err := sc.Scan(context.Background(), Request{Source: SourceDailyPlays})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.TickersScanned != len(DefaultUniverse) {
		t.Errorf("Daily plays should scan the default universe, scanned %d", result.TickersScanned)
	}
	if len(result.Candidates) > 5 {
		t.Errorf("Candidates must be capped at MaxCandidates, got %d", len(result.Candidates))
	}
}

func TestScanAllTickersFailing(t *testing.T) {
	provider := &fakeProvider{failBars: map[string]bool{"DEADA": true, "DEADB": true}}
	store := &fakeStore{}
	sc := newTestScanner(provider, store, nil)

	result, err := sc.Scan(context.Background(), Request{
		Source:  SourceSqueeze,
		Tickers: []TickerInput{{Ticker: "DEADA"}, {Ticker: "DEADB"}},
	})
	if err != nil {
		t.Fatalf("A failed batch must still return a result: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(result.Candidates))
	}
	if result.Note == "" {
		t.Error("An empty batch should carry a diagnostic note")
	}
	if len(store.scans) != 1 {
		t.Error("Even empty scans append to history")
	}
}

// TestScanPersistsPastDeadline tests that a batch that ran out its scan
// timeout still records whatever completed
func TestScanPersistsPastDeadline(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeStore{}
	sc := newTestScanner(provider, store, nil)
	sc.config.ScanTimeout = time.Nanosecond

	result, err := sc.Scan(context.Background(), Request{
		Source:  SourceSqueeze,
		Tickers: []TickerInput{{Ticker: "LATE", ShortInterest: 40}},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(store.scans) != 1 {
		t.Fatalf("Timed-out scans must still append to history, got %d rows", len(store.scans))
	}
	if len(store.recs) != len(result.Candidates) {
		t.Errorf("Candidates that completed must persist past the deadline, got %d of %d",
			len(store.recs), len(result.Candidates))
	}
}

func TestScanLearnedAdjustmentReachesRecommendation(t *testing.T) {
	provider := &fakeProvider{thinChain: map[string]bool{"ADJT": true}}
	baseline := &fakeStore{}
	sc := newTestScanner(provider, baseline, nil)
	res1, err := sc.Scan(context.Background(), Request{
		Source:  SourceSqueeze,
		Tickers: []TickerInput{{Ticker: "ADJT"}},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	adjusted := &fakeStore{adjustments: map[string]int{"3-1": -5}}
	sc = newTestScanner(provider, adjusted, nil)
	res2, err := sc.Scan(context.Background(), Request{
		Source:  SourceSqueeze,
		Tickers: []TickerInput{{Ticker: "ADJT"}},
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	before := res1.Candidates[0].Confidence
	after := res2.Candidates[0].Confidence
	if after != before-5 {
		t.Errorf("Learned -5 adjustment should shift confidence: %d vs %d", before, after)
	}

	found := false
	for _, r := range res2.Candidates[0].Reasoning {
		if strings.Contains(r, "Historical pattern performance adjustment") {
			found = true
		}
	}
	if !found {
		t.Error("The adjustment should appear in the reasoning")
	}
}
