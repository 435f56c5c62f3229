package database

import (
	"context"
	"fmt"
	"time"
)

// UpsertPatternPerformance writes the learner's aggregate for one pattern
// tag, keyed by the unique pattern column
func (r *Repository) UpsertPatternPerformance(ctx context.Context, perf *PatternPerformance) error {
	query := `
		INSERT INTO pattern_performance (
			pattern, total_recommendations, successful_count, failed_count,
			avg_confidence, avg_success_rate, confidence_adjustment, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pattern) DO UPDATE SET
			total_recommendations = EXCLUDED.total_recommendations,
			successful_count = EXCLUDED.successful_count,
			failed_count = EXCLUDED.failed_count,
			avg_confidence = EXCLUDED.avg_confidence,
			avg_success_rate = EXCLUDED.avg_success_rate,
			confidence_adjustment = EXCLUDED.confidence_adjustment,
			last_updated = EXCLUDED.last_updated
	`

	if perf.LastUpdated.IsZero() {
		perf.LastUpdated = time.Now().UTC()
	}

	_, err := r.db.Pool.Exec(ctx, query,
		perf.Pattern, perf.TotalRecommendations, perf.SuccessfulCount,
		perf.FailedCount, perf.AvgConfidence, perf.AvgSuccessRate,
		perf.ConfidenceAdjustment, perf.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pattern performance: %w", err)
	}
	return nil
}

// GetPatternAdjustments returns the learned confidence adjustment per
// pattern tag, read by the scorer at the start of each scan
func (r *Repository) GetPatternAdjustments(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT pattern, confidence_adjustment FROM pattern_performance`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make(map[string]int)
	for rows.Next() {
		var pattern string
		var adjustment int
		if err := rows.Scan(&pattern, &adjustment); err != nil {
			return nil, fmt.Errorf("failed to scan pattern adjustment: %w", err)
		}
		adjustments[pattern] = adjustment
	}

	return adjustments, rows.Err()
}
