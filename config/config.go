package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MarketDataConfig MarketDataConfig `json:"market_data"`
	ScannerConfig    ScannerConfig    `json:"scanner"`
	BacktestConfig   BacktestConfig   `json:"backtest"`
	DatabaseConfig   DatabaseConfig   `json:"database"`
	RedisConfig      RedisConfig      `json:"redis"`
	LoggingConfig    LoggingConfig    `json:"logging"`
	StreamConfig     StreamConfig     `json:"stream"`
}

// MarketDataConfig holds upstream quote/history provider configuration
type MarketDataConfig struct {
	PrimaryBaseURL   string  `json:"primary_base_url"`
	FallbackBaseURL  string  `json:"fallback_base_url"`
	MinRequestGapMS  int     `json:"min_request_gap_ms"`  // Minimum gap between upstream requests
	CacheTTLSeconds  int     `json:"cache_ttl_seconds"`   // Bar/quote cache TTL
	RetryMaxAttempts int     `json:"retry_max_attempts"`
	RetryBaseDelayMS int     `json:"retry_base_delay_ms"`
	RequestTimeoutMS int     `json:"request_timeout_ms"`  // Per-attempt HTTP timeout
}

type ScannerConfig struct {
	WorkerCount      int     `json:"worker_count"`       // Concurrent ticker workers
	ScanTimeout      int     `json:"scan_timeout"`       // Seconds for the whole batch
	TickerTimeout    int     `json:"ticker_timeout"`     // Seconds per ticker
	MinCandidates    int     `json:"min_candidates"`     // Floor for EnsureMinimumCandidates
	MaxCandidates    int     `json:"max_candidates"`     // Cap on returned results
	IntervalMinutes  int     `json:"interval_minutes"`   // Cadence of the periodic scan
	MinRiskScore     float64 `json:"min_risk_score"`     // Squeeze scan risk floor
	MinVolumeRatio   float64 `json:"min_volume_ratio"`   // Squeeze scan volume floor
	MinDailyChange   float64 `json:"min_daily_change"`   // Squeeze scan gain floor %
	MinShortInterest float64 `json:"min_short_interest"` // Squeeze scan short interest floor %
}

type BacktestConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalHours   int  `json:"interval_hours"`    // Cadence of the periodic run
	LookbackDays    int  `json:"lookback_days"`     // Trailing recommendation window
	LearnerMinTotal int  `json:"learner_min_total"` // Minimum outcomes before adjusting
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig holds Redis configuration for the shared scan/quote cache
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Output string `json:"output"` // stdout, stderr, or file path
	Pretty bool   `json:"pretty"` // Console writer instead of JSON
}

// StreamConfig holds the optional live quote stream configuration
type StreamConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Market data config
	cfg.MarketDataConfig.PrimaryBaseURL = getEnvOrDefault("MARKET_PRIMARY_BASE_URL", cfg.MarketDataConfig.PrimaryBaseURL)
	if cfg.MarketDataConfig.PrimaryBaseURL == "" {
		cfg.MarketDataConfig.PrimaryBaseURL = "https://query1.finance.yahoo.com"
	}
	cfg.MarketDataConfig.FallbackBaseURL = getEnvOrDefault("MARKET_FALLBACK_BASE_URL", cfg.MarketDataConfig.FallbackBaseURL)
	if cfg.MarketDataConfig.FallbackBaseURL == "" {
		cfg.MarketDataConfig.FallbackBaseURL = "https://query2.finance.yahoo.com"
	}
	cfg.MarketDataConfig.MinRequestGapMS = getEnvIntOrDefault("MARKET_MIN_REQUEST_GAP_MS", defaultInt(cfg.MarketDataConfig.MinRequestGapMS, 100))
	cfg.MarketDataConfig.CacheTTLSeconds = getEnvIntOrDefault("MARKET_CACHE_TTL_SECONDS", defaultInt(cfg.MarketDataConfig.CacheTTLSeconds, 300))
	cfg.MarketDataConfig.RetryMaxAttempts = getEnvIntOrDefault("MARKET_RETRY_MAX_ATTEMPTS", defaultInt(cfg.MarketDataConfig.RetryMaxAttempts, 2))
	cfg.MarketDataConfig.RetryBaseDelayMS = getEnvIntOrDefault("MARKET_RETRY_BASE_DELAY_MS", defaultInt(cfg.MarketDataConfig.RetryBaseDelayMS, 250))
	cfg.MarketDataConfig.RequestTimeoutMS = getEnvIntOrDefault("MARKET_REQUEST_TIMEOUT_MS", defaultInt(cfg.MarketDataConfig.RequestTimeoutMS, 10000))

	// Scanner config
	cfg.ScannerConfig.WorkerCount = getEnvIntOrDefault("SCANNER_WORKER_COUNT", defaultInt(cfg.ScannerConfig.WorkerCount, 10))
	cfg.ScannerConfig.ScanTimeout = getEnvIntOrDefault("SCANNER_SCAN_TIMEOUT", defaultInt(cfg.ScannerConfig.ScanTimeout, 300))
	cfg.ScannerConfig.TickerTimeout = getEnvIntOrDefault("SCANNER_TICKER_TIMEOUT", defaultInt(cfg.ScannerConfig.TickerTimeout, 30))
	cfg.ScannerConfig.MinCandidates = getEnvIntOrDefault("SCANNER_MIN_CANDIDATES", defaultInt(cfg.ScannerConfig.MinCandidates, 5))
	cfg.ScannerConfig.MaxCandidates = getEnvIntOrDefault("SCANNER_MAX_CANDIDATES", defaultInt(cfg.ScannerConfig.MaxCandidates, 15))
	cfg.ScannerConfig.IntervalMinutes = getEnvIntOrDefault("SCANNER_INTERVAL_MINUTES", defaultInt(cfg.ScannerConfig.IntervalMinutes, 60))
	cfg.ScannerConfig.MinRiskScore = getEnvFloatOrDefault("SCANNER_MIN_RISK_SCORE", defaultFloat(cfg.ScannerConfig.MinRiskScore, 60))
	cfg.ScannerConfig.MinVolumeRatio = getEnvFloatOrDefault("SCANNER_MIN_VOLUME_RATIO", defaultFloat(cfg.ScannerConfig.MinVolumeRatio, 1.5))
	cfg.ScannerConfig.MinDailyChange = getEnvFloatOrDefault("SCANNER_MIN_DAILY_CHANGE", defaultFloat(cfg.ScannerConfig.MinDailyChange, 15))
	cfg.ScannerConfig.MinShortInterest = getEnvFloatOrDefault("SCANNER_MIN_SHORT_INTEREST", defaultFloat(cfg.ScannerConfig.MinShortInterest, 25))

	// Backtest config
	cfg.BacktestConfig.Enabled = getEnvOrDefault("BACKTEST_ENABLED", "true") == "true"
	cfg.BacktestConfig.IntervalHours = getEnvIntOrDefault("BACKTEST_INTERVAL_HOURS", defaultInt(cfg.BacktestConfig.IntervalHours, 24))
	cfg.BacktestConfig.LookbackDays = getEnvIntOrDefault("BACKTEST_LOOKBACK_DAYS", defaultInt(cfg.BacktestConfig.LookbackDays, 30))
	cfg.BacktestConfig.LearnerMinTotal = getEnvIntOrDefault("BACKTEST_LEARNER_MIN_TOTAL", defaultInt(cfg.BacktestConfig.LearnerMinTotal, 1))

	// Database config
	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", defaultString(cfg.DatabaseConfig.Host, "localhost"))
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", defaultInt(cfg.DatabaseConfig.Port, 5432))
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", defaultString(cfg.DatabaseConfig.User, "postgres"))
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DB_NAME", defaultString(cfg.DatabaseConfig.Database, "lemonshortbot"))
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", defaultString(cfg.DatabaseConfig.SSLMode, "disable"))

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", defaultString(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "info"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.Pretty = getEnvOrDefault("LOG_PRETTY", "false") == "true"

	// Stream config
	cfg.StreamConfig.Enabled = getEnvOrDefault("STREAM_ENABLED", "false") == "true"
	cfg.StreamConfig.URL = getEnvOrDefault("STREAM_URL", cfg.StreamConfig.URL)
}

// MinRequestGap returns the upstream request gap as a duration
func (c MarketDataConfig) MinRequestGap() time.Duration {
	return time.Duration(c.MinRequestGapMS) * time.Millisecond
}

// CacheTTL returns the market data cache TTL as a duration
func (c MarketDataConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-attempt request timeout as a duration
func (c MarketDataConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func defaultFloat(value, fallback float64) float64 {
	if value == 0 {
		return fallback
	}
	return value
}
