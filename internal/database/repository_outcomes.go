package database

import (
	"context"
	"fmt"
)

// InsertOutcome records a checkpoint result. A duplicate
// (recommendation_id, days_after) pair is a success-no-op: the unique
// constraint absorbs it and reruns stay idempotent. Returns whether a row
// was actually written.
func (r *Repository) InsertOutcome(ctx context.Context, outcome *Outcome) (bool, error) {
	query := `
		INSERT INTO outcomes (
			recommendation_id, days_after, actual_price, price_change_pct,
			was_profitable, profit_pct, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (recommendation_id, days_after) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		outcome.RecommendationID, outcome.DaysAfter, outcome.ActualPrice,
		outcome.PriceChangePct, outcome.WasProfitable, outcome.ProfitPct,
		outcome.CheckedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert outcome: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetOutcomeDays returns the checkpoints already recorded for a
// recommendation
func (r *Repository) GetOutcomeDays(ctx context.Context, recommendationID int64) (map[int]bool, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT days_after FROM outcomes WHERE recommendation_id = $1`, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome days: %w", err)
	}
	defer rows.Close()

	days := make(map[int]bool)
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan outcome day: %w", err)
		}
		days[day] = true
	}

	return days, rows.Err()
}

// GetPatternStats aggregates outcomes at the given checkpoint horizon by
// pattern tag, for the performance learner
func (r *Repository) GetPatternStats(ctx context.Context, daysAfter int) ([]PatternStats, error) {
	query := `
		SELECT rec.pattern,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE o.was_profitable) AS successes,
		       AVG(rec.confidence) AS avg_confidence
		FROM outcomes o
		JOIN recommendations rec ON rec.id = o.recommendation_id
		WHERE o.days_after = $1
		GROUP BY rec.pattern
	`

	rows, err := r.db.Pool.Query(ctx, query, daysAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern stats: %w", err)
	}
	defer rows.Close()

	var stats []PatternStats
	for rows.Next() {
		var s PatternStats
		if err := rows.Scan(&s.Pattern, &s.Total, &s.Successes, &s.AvgConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan pattern stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
