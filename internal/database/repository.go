package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Repository provides access to persisted recommendations, outcomes,
// pattern performance, and scan history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertRecommendation persists a scored candidate and assigns its
// expiration date from the textual window. Returns the new row ID.
func (r *Repository) InsertRecommendation(ctx context.Context, rec *Recommendation) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ExpirationDate.IsZero() {
		rec.ExpirationDate = ExpirationFromWindow(rec.ExpirationWindow, rec.CreatedAt)
	}

	reasoning, err := json.Marshal(rec.Reasoning)
	if err != nil {
		return 0, fmt.Errorf("failed to encode reasoning: %w", err)
	}

	query := `
		INSERT INTO recommendations (
			ticker, company, option_type, strike_price, current_price,
			expiration_window, confidence, pattern, direction, volume_ratio,
			news_sentiment, source, reasoning, options_flow, contract_quote,
			created_at, expiration_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	var id int64
	err = r.db.Pool.QueryRow(ctx, query,
		rec.Ticker, rec.Company, rec.OptionType, rec.StrikePrice, rec.CurrentPrice,
		rec.ExpirationWindow, rec.Confidence, rec.Pattern, rec.Direction, rec.VolumeRatio,
		rec.NewsSentiment, rec.Source, reasoning, rec.OptionsFlow, rec.ContractQuote,
		rec.CreatedAt, rec.ExpirationDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recommendation: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetOpenRecommendations returns recommendations created since the given
// time that do not yet have a terminal 14-day outcome.
func (r *Repository) GetOpenRecommendations(ctx context.Context, since time.Time) ([]Recommendation, error) {
	query := `
		SELECT id, ticker, company, option_type, strike_price, current_price,
		       expiration_window, confidence, pattern, direction, volume_ratio,
		       news_sentiment, source, created_at, expiration_date
		FROM recommendations rec
		WHERE created_at >= $1
		  AND NOT EXISTS (
		      SELECT 1 FROM outcomes o
		      WHERE o.recommendation_id = rec.id AND o.days_after = 14
		  )
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query open recommendations: %w", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(
			&rec.ID, &rec.Ticker, &rec.Company, &rec.OptionType, &rec.StrikePrice,
			&rec.CurrentPrice, &rec.ExpirationWindow, &rec.Confidence, &rec.Pattern,
			&rec.Direction, &rec.VolumeRatio, &rec.NewsSentiment, &rec.Source,
			&rec.CreatedAt, &rec.ExpirationDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
