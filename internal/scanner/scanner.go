package scanner

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/cache"
	"github.com/moddonthemix-lab/lemonshortbot/internal/database"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scoring"
)

// Store is the persistence surface the scanner needs
type Store interface {
	InsertRecommendation(ctx context.Context, rec *database.Recommendation) (int64, error)
	InsertScanRecord(ctx context.Context, record *database.ScanRecord) error
	GetPatternAdjustments(ctx context.Context) (map[string]int, error)
}

// BacktestTrigger requests an immediate backtest pass after a scan
type BacktestTrigger interface {
	TriggerNow()
}

// Scanner orchestrates per-ticker scan tasks across a bounded worker pool,
// scores the survivors, persists recommendations, and kicks the backtest
// engine. Failures of individual tickers surface only as omissions from
// the result set.
type Scanner struct {
	provider marketdata.Provider
	detector *patterns.Detector
	mtf      *analysis.MultiTimeframeAnalyzer
	flow     *analysis.FlowAnalyzer
	scorer   *scoring.Scorer
	store    Store
	scans    *cache.ScanCache // nil when Redis is disabled
	backtest BacktestTrigger  // nil in one-shot runs
	config   Config
	logger   zerolog.Logger
}

// NewScanner creates a scanner
func NewScanner(
	provider marketdata.Provider,
	detector *patterns.Detector,
	mtf *analysis.MultiTimeframeAnalyzer,
	flow *analysis.FlowAnalyzer,
	scorer *scoring.Scorer,
	store Store,
	scans *cache.ScanCache,
	backtest BacktestTrigger,
	config Config,
	logger zerolog.Logger,
) *Scanner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = 5 * time.Minute
	}
	if config.TickerTimeout <= 0 {
		config.TickerTimeout = 30 * time.Second
	}
	if config.MinCandidates <= 0 {
		config.MinCandidates = 5
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 15
	}
	return &Scanner{
		provider: provider,
		detector: detector,
		mtf:      mtf,
		flow:     flow,
		scorer:   scorer,
		store:    store,
		scans:    scans,
		backtest: backtest,
		config:   config,
		logger:   logger.With().Str("component", "Scanner").Logger(),
	}
}

// Scan runs one full batch for the request. The batch is bounded by the
// scan timeout and returns whatever completed; an all-failure batch yields
// an empty successful result with a diagnostic note. Daily-plays requests
// reuse a fresh shared snapshot when another process scanned the source
// within the snapshot TTL.
func (sc *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	if cached := sc.cachedResult(ctx, req); cached != nil {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, sc.config.ScanTimeout)
	defer cancel()

	startTime := time.Now()
	scanID := uuid.NewString()

	universe := req.Tickers
	if req.Source != SourceSqueeze {
		universe = MergeUniverse(req.Tickers)
	}
	if req.ExpirationWindow == "" {
		req.ExpirationWindow = "1-2 weeks"
	}

	sc.logger.Info().Str("scan_id", scanID).Str("source", req.Source).
		Int("tickers", len(universe)).Msg("starting scan")

	// Learned adjustments are read once per pass; a failed read scores
	// with no adjustment rather than failing the scan
	adjustments, err := sc.store.GetPatternAdjustments(ctx)
	if err != nil {
		sc.logger.Warn().Err(err).Msg("pattern adjustments unavailable, scoring without")
		adjustments = map[string]int{}
	}

	tickerChan := make(chan TickerInput, len(universe))
	resultChan := make(chan *Candidate, len(universe))

	var wg sync.WaitGroup
	for i := 0; i < sc.config.WorkerCount; i++ {
		wg.Add(1)
		go sc.worker(ctx, req, adjustments, tickerChan, resultChan, &wg)
	}

	for _, in := range universe {
		tickerChan <- in
	}
	close(tickerChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	pool := make([]Candidate, 0, len(universe))
	for candidate := range resultChan {
		if candidate != nil {
			pool = append(pool, *candidate)
		}
	}

	// Deterministic ordering only after all tasks settle
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Confidence > pool[j].Confidence
	})

	filtered := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.PassedFilters {
			filtered = append(filtered, c)
		}
	}

	candidates := EnsureMinimumCandidates(sc.config.MinCandidates, filtered, pool)
	if len(candidates) > sc.config.MaxCandidates {
		candidates = candidates[:sc.config.MaxCandidates]
	}

	result := &Result{
		ScanID:         scanID,
		Source:         req.Source,
		StartTime:      startTime,
		Duration:       time.Since(startTime),
		TickersScanned: len(universe),
		Candidates:     candidates,
	}
	if len(candidates) == 0 {
		result.Note = "no candidates scored; upstream data may be unavailable"
	}

	sc.persist(ctx, req, result)

	if sc.backtest != nil {
		sc.backtest.TriggerNow()
	}

	sc.logger.Info().Str("scan_id", scanID).Dur("duration", result.Duration).
		Int("candidates", len(candidates)).Msg("scan complete")

	return result, nil
}

// cachedResult returns a shared snapshot for deterministic-universe scans.
// Squeeze requests carry bespoke ticker sets and always run fresh; the same
// goes when Redis is disabled or down.
func (sc *Scanner) cachedResult(ctx context.Context, req Request) *Result {
	if req.Source != SourceDailyPlays || sc.scans == nil || !sc.scans.Healthy() {
		return nil
	}
	var cached Result
	if err := sc.scans.GetLatestScan(ctx, req.Source, &cached); err != nil {
		return nil
	}
	if len(cached.Candidates) == 0 {
		return nil
	}
	sc.logger.Info().Str("scan_id", cached.ScanID).Str("source", req.Source).
		Msg("serving recent scan snapshot from shared cache")
	return &cached
}

// worker processes tickers from the channel
func (sc *Scanner) worker(
	ctx context.Context,
	req Request,
	adjustments map[string]int,
	tickerChan <-chan TickerInput,
	resultChan chan<- *Candidate,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for in := range tickerChan {
		select {
		case <-ctx.Done():
			return
		default:
			resultChan <- sc.scanTicker(ctx, req, in, adjustments)
		}
	}
}

// persist writes recommendations, the scan history row, and the Redis
// snapshot. All best-effort: persistence trouble is logged, not returned.
// Detached from the scan deadline so a batch that hit its timeout still
// persists whatever completed.
func (sc *Scanner) persist(ctx context.Context, req Request, result *Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for i := range result.Candidates {
		rec := toRecommendation(&result.Candidates[i], req.Source, result.StartTime)
		if _, err := sc.store.InsertRecommendation(ctx, rec); err != nil {
			sc.logger.Warn().Str("ticker", rec.Ticker).Err(err).Msg("recommendation insert failed")
		}
	}

	record := buildScanRecord(req, result)
	if err := sc.store.InsertScanRecord(ctx, record); err != nil {
		sc.logger.Warn().Err(err).Msg("scan history insert failed")
	}

	if sc.scans != nil {
		if err := sc.scans.SetLatestScan(ctx, result.Source, result); err != nil {
			sc.logger.Debug().Err(err).Msg("scan snapshot not cached")
		}
	}
}

func toRecommendation(c *Candidate, source string, createdAt time.Time) *database.Recommendation {
	flowJSON, _ := json.Marshal(c.Flow)
	var contractJSON []byte
	if c.Contract != nil {
		contractJSON, _ = json.Marshal(c.Contract)
	}

	reasoning := make([]string, 0, len(c.Reasoning)+len(c.Quality.Warnings))
	reasoning = append(reasoning, c.Reasoning...)
	reasoning = append(reasoning, c.Quality.Warnings...)

	return &database.Recommendation{
		Ticker:           c.Ticker,
		Company:          c.Company,
		OptionType:       string(c.OptionType),
		StrikePrice:      c.StrikePrice,
		CurrentPrice:     c.CurrentPrice,
		ExpirationWindow: c.ExpirationWindow,
		Confidence:       c.Confidence,
		Pattern:          string(c.Pattern.Kind),
		Direction:        string(c.Pattern.Direction),
		VolumeRatio:      c.VolumeRatio,
		NewsSentiment:    string(c.Sentiment),
		Source:           source,
		Reasoning:        reasoning,
		OptionsFlow:      flowJSON,
		ContractQuote:    contractJSON,
		CreatedAt:        createdAt.UTC(),
	}
}

func buildScanRecord(req Request, result *Result) *database.ScanRecord {
	criteria, _ := json.Marshal(req.Criteria)

	tickers := make([]string, 0, len(result.Candidates))
	var scoreSum float64
	type topScore struct {
		Ticker string `json:"ticker"`
		Score  int    `json:"score"`
	}
	top := make([]topScore, 0, 10)
	for _, c := range result.Candidates {
		tickers = append(tickers, c.Ticker)
		scoreSum += float64(c.Confidence)
		if len(top) < 10 {
			top = append(top, topScore{Ticker: c.Ticker, Score: c.Confidence})
		}
	}
	topJSON, _ := json.Marshal(top)

	var avg float64
	if len(result.Candidates) > 0 {
		avg = scoreSum / float64(len(result.Candidates))
	}

	return &database.ScanRecord{
		ScanID:       result.ScanID,
		Source:       result.Source,
		Criteria:     criteria,
		ResultsCount: len(result.Candidates),
		Tickers:      tickers,
		TopScores:    topJSON,
		AvgScore:     avg,
		CreatedAt:    result.StartTime.UTC(),
	}
}
