package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/config"
	"github.com/moddonthemix-lab/lemonshortbot/internal/analysis"
	"github.com/moddonthemix-lab/lemonshortbot/internal/backtest"
	"github.com/moddonthemix-lab/lemonshortbot/internal/cache"
	"github.com/moddonthemix-lab/lemonshortbot/internal/database"
	"github.com/moddonthemix-lab/lemonshortbot/internal/logging"
	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
	"github.com/moddonthemix-lab/lemonshortbot/internal/patterns"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scanner"
	"github.com/moddonthemix-lab/lemonshortbot/internal/scoring"
)

func main() {
	// .env is optional; environment and config.json still apply without it
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LoggingConfig.Level,
		Output: cfg.LoggingConfig.Output,
		Pretty: cfg.LoggingConfig.Pretty,
	})
	logger.Info().Msg("starting lemonshortbot")

	// Database
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	repo := database.NewRepository(db)

	// Shared scan/quote cache, optional
	var scans *cache.ScanCache
	if cfg.RedisConfig.Enabled {
		scans = cache.NewScanCache(cache.Config{
			Address:  cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		}, logger)
		defer scans.Close()
	}

	// Market data: rate-gated, retried, cached, with a fallback host
	gate := marketdata.NewRequestGate(cfg.MarketDataConfig.MinRequestGap())
	retry := marketdata.RetryPolicy{
		MaxAttempts:    cfg.MarketDataConfig.RetryMaxAttempts,
		BaseDelay:      time.Duration(cfg.MarketDataConfig.RetryBaseDelayMS) * time.Millisecond,
		AttemptTimeout: cfg.MarketDataConfig.RequestTimeout(),
	}
	primary := marketdata.NewYahooClient(cfg.MarketDataConfig.PrimaryBaseURL, gate, retry, logger)
	fallback := marketdata.NewYahooClient(cfg.MarketDataConfig.FallbackBaseURL, gate, retry, logger)
	chained := marketdata.NewFallbackProvider(logger, primary, fallback)
	provider := marketdata.NewCachedProvider(chained, cfg.MarketDataConfig.CacheTTL())

	// Optional live quote feed into the cache
	var stream *marketdata.QuoteStream
	if cfg.StreamConfig.Enabled && cfg.StreamConfig.URL != "" {
		stream = marketdata.NewQuoteStream(cfg.StreamConfig.URL, provider, logger)
		stream.Subscribe(scanner.DefaultUniverse...)
		stream.Start()
		defer stream.Stop()
	}

	// Analysis pipeline
	detector := patterns.NewDetector()
	mtf := analysis.NewMultiTimeframeAnalyzer(provider, detector, logger)
	flow := analysis.NewFlowAnalyzer()
	scorer := scoring.NewScorer()

	// Backtest engine and learner
	learner := backtest.NewLearner(repo, cfg.BacktestConfig.LearnerMinTotal, logger)
	var engine *backtest.Engine
	if cfg.BacktestConfig.Enabled {
		engine = backtest.NewEngine(repo, provider, learner, backtest.Config{
			Interval:     time.Duration(cfg.BacktestConfig.IntervalHours) * time.Hour,
			LookbackDays: cfg.BacktestConfig.LookbackDays,
		}, logger)
		engine.Start()
		defer engine.Stop()
	}

	// Scanner
	var trigger scanner.BacktestTrigger
	if engine != nil {
		trigger = engine
	}
	sc := scanner.NewScanner(provider, detector, mtf, flow, scorer, repo, scans, trigger, scanner.Config{
		WorkerCount:   cfg.ScannerConfig.WorkerCount,
		ScanTimeout:   time.Duration(cfg.ScannerConfig.ScanTimeout) * time.Second,
		TickerTimeout: time.Duration(cfg.ScannerConfig.TickerTimeout) * time.Second,
		MinCandidates: cfg.ScannerConfig.MinCandidates,
		MaxCandidates: cfg.ScannerConfig.MaxCandidates,
	}, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go runScanLoop(runCtx, sc, provider, cfg, logger)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()
}

// runScanLoop runs a daily-plays scan immediately and then on a fixed
// cadence until the context is cancelled. Squeeze scans arrive with
// explicit ticker sets through other entrypoints; the loop covers the
// default universe.
func runScanLoop(ctx context.Context, sc *scanner.Scanner, provider *marketdata.CachedProvider, cfg *config.Config, logger zerolog.Logger) {
	interval := time.Duration(cfg.ScannerConfig.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		req := scanner.Request{
			Source:           scanner.SourceDailyPlays,
			ExpirationWindow: "1-2 weeks",
			Criteria: scanner.Criteria{
				MinShortInterest: cfg.ScannerConfig.MinShortInterest,
				MinDailyChange:   cfg.ScannerConfig.MinDailyChange,
				MinVolumeRatio:   cfg.ScannerConfig.MinVolumeRatio,
				MinRiskScore:     cfg.ScannerConfig.MinRiskScore,
			},
		}
		if _, err := sc.Scan(ctx, req); err != nil {
			logger.Error().Err(err).Msg("scan failed")
		}
		provider.CleanupExpired()
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
