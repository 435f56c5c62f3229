package backtest

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/internal/database"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// Checkpoints are the day offsets at which an outcome is evaluated. The
// 14-day checkpoint is terminal.
var Checkpoints = []int{1, 3, 5, 7, 14}

// Store is the persistence surface the engine needs
type Store interface {
	GetOpenRecommendations(ctx context.Context, since time.Time) ([]database.Recommendation, error)
	GetOutcomeDays(ctx context.Context, recommendationID int64) (map[int]bool, error)
	InsertOutcome(ctx context.Context, outcome *database.Outcome) (bool, error)
	GetPatternStats(ctx context.Context, daysAfter int) ([]database.PatternStats, error)
	UpsertPatternPerformance(ctx context.Context, perf *database.PatternPerformance) error
}

// BarSource supplies historical prices for checkpoint evaluation
type BarSource interface {
	FetchBars(ctx context.Context, symbol, period, interval string) ([]marketdata.Bar, error)
}

// Config holds backtest engine configuration
type Config struct {
	Interval     time.Duration // Cadence of the periodic run
	LookbackDays int           // Trailing window of recommendations to check
}

// Engine advances recommendations through their outcome checkpoints on a
// fixed cadence, independent of request traffic. All writes are idempotent:
// the unique (recommendation, days_after) constraint makes reruns and
// restarts safe.
type Engine struct {
	store   Store
	bars    BarSource
	learner *Learner
	config  Config
	logger  zerolog.Logger

	now func() time.Time

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	triggerC chan struct{}
}

// NewEngine creates a backtest engine
func NewEngine(store Store, bars BarSource, learner *Learner, config Config, logger zerolog.Logger) *Engine {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.LookbackDays <= 0 {
		config.LookbackDays = 30
	}
	return &Engine{
		store:    store,
		bars:     bars,
		learner:  learner,
		config:   config,
		logger:   logger.With().Str("component", "BacktestEngine").Logger(),
		now:      time.Now,
		triggerC: make(chan struct{}, 1),
	}
}

// Start launches the supervised periodic loop. The loop runs once
// immediately, then on every tick or external trigger, until Stop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runLoop(ctx)
	e.logger.Info().Dur("interval", e.config.Interval).Msg("backtest engine started")
}

// Stop cancels the loop and waits for any in-flight run to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.cancel()
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info().Msg("backtest engine stopped")
}

// TriggerNow requests an immediate run, used after each fresh scoring pass.
// Coalesces if a trigger is already pending.
func (e *Engine) TriggerNow() {
	select {
	case e.triggerC <- struct{}{}:
	default:
	}
}

func (e *Engine) runLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	e.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			e.runOnce(ctx)
		case <-e.triggerC:
			e.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) runOnce(ctx context.Context) {
	if err := e.Run(ctx); err != nil {
		e.logger.Error().Err(err).Msg("backtest run failed")
	}
}

// Run executes one full checkpoint pass over the trailing recommendation
// window, then feeds outcomes to the performance learner. Individual
// ticker/date failures skip that checkpoint without failing the batch.
func (e *Engine) Run(ctx context.Context) error {
	now := e.now().UTC()
	since := now.AddDate(0, 0, -e.config.LookbackDays)

	recs, err := e.store.GetOpenRecommendations(ctx, since)
	if err != nil {
		return err
	}

	var written int
	for _, rec := range recs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		written += e.checkRecommendation(ctx, rec, now)
	}

	e.logger.Info().Int("recommendations", len(recs)).Int("outcomes_written", written).Msg("backtest pass complete")

	if e.learner != nil {
		if err := e.learner.Run(ctx); err != nil {
			e.logger.Error().Err(err).Msg("pattern performance update failed")
		}
	}

	return nil
}

func (e *Engine) checkRecommendation(ctx context.Context, rec database.Recommendation, now time.Time) int {
	daysPassed := int(now.Sub(rec.CreatedAt).Hours() / 24)
	if daysPassed < Checkpoints[0] {
		return 0
	}

	existing, err := e.store.GetOutcomeDays(ctx, rec.ID)
	if err != nil {
		e.logger.Warn().Int64("recommendation", rec.ID).Err(err).Msg("outcome lookup failed")
		return 0
	}

	var bars []marketdata.Bar
	written := 0

	for _, n := range Checkpoints {
		if n > daysPassed || existing[n] {
			continue
		}

		if bars == nil {
			bars, err = e.bars.FetchBars(ctx, rec.Ticker, marketdata.Period3mo, marketdata.Interval1d)
			if err != nil || len(bars) == 0 {
				e.logger.Debug().Str("ticker", rec.Ticker).Err(err).Msg("no history for backtest, skipping")
				return written
			}
		}

		target := rec.CreatedAt.AddDate(0, 0, n)
		bar, ok := nearestBar(bars, target)
		if !ok {
			continue
		}

		outcome := buildOutcome(rec, n, bar.Close, e.now().UTC())
		inserted, err := e.store.InsertOutcome(ctx, &outcome)
		if err != nil {
			e.logger.Warn().Int64("recommendation", rec.ID).Int("days_after", n).Err(err).Msg("outcome insert failed")
			continue
		}
		if inserted {
			written++
		}
	}

	return written
}

// buildOutcome classifies profitability for one checkpoint. CALLs win when
// price finished above the strike, PUTs when below; profit is measured
// against the strike either way.
func buildOutcome(rec database.Recommendation, daysAfter int, actualPrice float64, checkedAt time.Time) database.Outcome {
	var changePct float64
	if rec.CurrentPrice > 0 {
		changePct = (actualPrice - rec.CurrentPrice) / rec.CurrentPrice * 100
	}

	var profitable bool
	var profitPct float64
	if rec.OptionType == "PUT" {
		profitable = actualPrice < rec.StrikePrice
		if rec.StrikePrice > 0 {
			profitPct = (rec.StrikePrice - actualPrice) / rec.StrikePrice * 100
		}
	} else {
		profitable = actualPrice > rec.StrikePrice
		if rec.StrikePrice > 0 {
			profitPct = (actualPrice - rec.StrikePrice) / rec.StrikePrice * 100
		}
	}

	return database.Outcome{
		RecommendationID: rec.ID,
		DaysAfter:        daysAfter,
		ActualPrice:      actualPrice,
		PriceChangePct:   changePct,
		WasProfitable:    profitable,
		ProfitPct:        profitPct,
		CheckedAt:        checkedAt,
	}
}

// nearestBar finds the bar closest in time to target. Nearest-date rather
// than exact-date matching tolerates weekends and holidays.
func nearestBar(bars []marketdata.Bar, target time.Time) (marketdata.Bar, bool) {
	if len(bars) == 0 {
		return marketdata.Bar{}, false
	}

	best := bars[0]
	bestDist := math.Abs(bars[0].Timestamp.Sub(target).Hours())
	for _, bar := range bars[1:] {
		dist := math.Abs(bar.Timestamp.Sub(target).Hours())
		if dist < bestDist {
			best = bar
			bestDist = dist
		}
	}

	return best, true
}
