package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// InsertScanRecord appends one completed scan summary to the history
func (r *Repository) InsertScanRecord(ctx context.Context, record *ScanRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tickers, err := json.Marshal(record.Tickers)
	if err != nil {
		return fmt.Errorf("failed to encode tickers: %w", err)
	}

	query := `
		INSERT INTO scan_history (
			scan_id, source, criteria, results_count, tickers, top_scores,
			avg_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		record.ScanID, record.Source, record.Criteria, record.ResultsCount,
		tickers, record.TopScores, record.AvgScore, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}
	return nil
}

// GetScanHistory returns the most recent scan summaries, newest first,
// capped at limit (default 50)
func (r *Repository) GetScanHistory(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	query := `
		SELECT id, scan_id, source, criteria, results_count, tickers,
		       top_scores, avg_score, created_at
		FROM scan_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var record ScanRecord
		var tickers []byte
		if err := rows.Scan(
			&record.ID, &record.ScanID, &record.Source, &record.Criteria,
			&record.ResultsCount, &tickers, &record.TopScores,
			&record.AvgScore, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if len(tickers) > 0 {
			if err := json.Unmarshal(tickers, &record.Tickers); err != nil {
				return nil, fmt.Errorf("failed to decode tickers: %w", err)
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
