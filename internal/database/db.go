package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB creates a new database connection
func NewDB(cfg Config, logger zerolog.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log := logger.With().Str("component", "database").Logger()
	log.Info().Str("database", cfg.Database).Msg("connected to PostgreSQL")

	return &DB{Pool: pool, logger: log}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info().Msg("database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	db.logger.Info().Msg("running database migrations")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			id BIGSERIAL PRIMARY KEY,
			ticker VARCHAR(12) NOT NULL,
			company VARCHAR(200),
			option_type VARCHAR(4) NOT NULL,
			strike_price DECIMAL(12, 2) NOT NULL,
			current_price DECIMAL(12, 4) NOT NULL,
			expiration_window VARCHAR(40),
			confidence INTEGER NOT NULL,
			pattern VARCHAR(40) NOT NULL,
			direction VARCHAR(10) NOT NULL,
			volume_ratio DECIMAL(10, 2),
			news_sentiment VARCHAR(10),
			source VARCHAR(40),
			reasoning JSONB,
			options_flow JSONB,
			contract_quote JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expiration_date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_ticker ON recommendations(ticker)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_created_at ON recommendations(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_pattern ON recommendations(pattern)`,

		// One outcome per checkpoint; the unique constraint is what makes
		// backtest reruns idempotent
		`CREATE TABLE IF NOT EXISTS outcomes (
			id BIGSERIAL PRIMARY KEY,
			recommendation_id BIGINT NOT NULL REFERENCES recommendations(id),
			days_after INTEGER NOT NULL,
			actual_price DECIMAL(12, 4) NOT NULL,
			price_change_pct DECIMAL(10, 4) NOT NULL,
			was_profitable BOOLEAN NOT NULL,
			profit_pct DECIMAL(10, 4) NOT NULL,
			checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (recommendation_id, days_after)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_recommendation ON outcomes(recommendation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_days_after ON outcomes(days_after)`,

		`CREATE TABLE IF NOT EXISTS pattern_performance (
			id BIGSERIAL PRIMARY KEY,
			pattern VARCHAR(40) NOT NULL UNIQUE,
			total_recommendations INTEGER NOT NULL DEFAULT 0,
			successful_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			avg_confidence DECIMAL(6, 2) NOT NULL DEFAULT 0,
			avg_success_rate DECIMAL(6, 2) NOT NULL DEFAULT 0,
			confidence_adjustment INTEGER NOT NULL DEFAULT 0,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS scan_history (
			id BIGSERIAL PRIMARY KEY,
			scan_id UUID NOT NULL,
			source VARCHAR(40) NOT NULL,
			criteria JSONB,
			results_count INTEGER NOT NULL,
			tickers JSONB,
			top_scores JSONB,
			avg_score DECIMAL(6, 2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_history_created_at ON scan_history(created_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	db.logger.Info().Msg("database migrations complete")
	return nil
}
