// Command analyze_performance reports historical recommendation accuracy
// from the outcomes table: win rate per pattern and per confidence bucket
// at a chosen checkpoint horizon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

type patternRow struct {
	Pattern    string
	Total      int
	Wins       int
	AvgProfit  float64
	Adjustment int
}

type bucketRow struct {
	Label string
	Total int
	Wins  int
}

func main() {
	days := flag.Int("days", 7, "checkpoint horizon in days")
	flag.Parse()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "lemonshortbot")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Printf("PATTERN PERFORMANCE AT %d-DAY CHECKPOINT\n", *days)
	fmt.Println("----------------------------------------")

	patternQuery := `
		SELECT
			r.pattern,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE o.was_profitable) AS wins,
			COALESCE(AVG(o.profit_pct), 0) AS avg_profit,
			COALESCE(MAX(pp.confidence_adjustment), 0) AS adjustment
		FROM outcomes o
		JOIN recommendations r ON r.id = o.recommendation_id
		LEFT JOIN pattern_performance pp ON pp.pattern = r.pattern
		WHERE o.days_after = $1
		GROUP BY r.pattern
		ORDER BY total DESC
	`
	rows, err := pool.Query(ctx, patternQuery, *days)
	if err != nil {
		fmt.Printf("Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	var patterns []patternRow
	for rows.Next() {
		var p patternRow
		if err := rows.Scan(&p.Pattern, &p.Total, &p.Wins, &p.AvgProfit, &p.Adjustment); err != nil {
			fmt.Printf("Scan failed: %v\n", err)
			os.Exit(1)
		}
		patterns = append(patterns, p)
	}

	fmt.Printf("%-14s %8s %8s %9s %10s %11s\n", "pattern", "total", "wins", "win rate", "avg P/L %", "adjustment")
	for _, p := range patterns {
		winRate := 0.0
		if p.Total > 0 {
			winRate = float64(p.Wins) / float64(p.Total) * 100
		}
		fmt.Printf("%-14s %8d %8d %8.1f%% %10.2f %+11d\n",
			p.Pattern, p.Total, p.Wins, winRate, p.AvgProfit, p.Adjustment)
	}

	fmt.Println()
	fmt.Println("WIN RATE BY CONFIDENCE BUCKET")
	fmt.Println("-----------------------------")

	bucketQuery := `
		SELECT
			CASE
				WHEN r.confidence >= 80 THEN '80+'
				WHEN r.confidence >= 65 THEN '65-79'
				WHEN r.confidence >= 50 THEN '50-64'
				ELSE '<50'
			END AS bucket,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE o.was_profitable) AS wins
		FROM outcomes o
		JOIN recommendations r ON r.id = o.recommendation_id
		WHERE o.days_after = $1
		GROUP BY bucket
		ORDER BY bucket DESC
	`
	brows, err := pool.Query(ctx, bucketQuery, *days)
	if err != nil {
		fmt.Printf("Query failed: %v\n", err)
		os.Exit(1)
	}
	defer brows.Close()

	for brows.Next() {
		var b bucketRow
		if err := brows.Scan(&b.Label, &b.Total, &b.Wins); err != nil {
			fmt.Printf("Scan failed: %v\n", err)
			os.Exit(1)
		}
		winRate := 0.0
		if b.Total > 0 {
			winRate = float64(b.Wins) / float64(b.Total) * 100
		}
		fmt.Printf("%-8s total=%-5d wins=%-5d win rate=%.1f%%\n", b.Label, b.Total, b.Wins, winRate)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
