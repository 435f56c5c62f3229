package backtest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/moddonthemix-lab/lemonshortbot/internal/database"
)

// LearnerHorizon is the representative checkpoint for win-rate learning.
// The 14-day checkpoint only marks terminal state; 7 days is where pattern
// quality is judged.
const LearnerHorizon = 7

// Learner aggregates outcomes by pattern and derives the bounded confidence
// adjustment the scorer applies on the next cycle. The mapping is a fixed
// step table, not a fitted model.
type Learner struct {
	store    Store
	minTotal int
	logger   zerolog.Logger
}

// NewLearner creates a pattern performance learner. Patterns with fewer
// than minTotal outcomes keep their existing adjustment untouched.
func NewLearner(store Store, minTotal int, logger zerolog.Logger) *Learner {
	if minTotal < 1 {
		minTotal = 1
	}
	return &Learner{
		store:    store,
		minTotal: minTotal,
		logger:   logger.With().Str("component", "PatternLearner").Logger(),
	}
}

// Run recomputes pattern performance from 7-day outcomes and upserts one
// row per pattern tag
func (l *Learner) Run(ctx context.Context) error {
	stats, err := l.store.GetPatternStats(ctx, LearnerHorizon)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, s := range stats {
		if s.Total < l.minTotal {
			continue
		}

		winRate := float64(s.Successes) / float64(s.Total) * 100
		perf := &database.PatternPerformance{
			Pattern:              s.Pattern,
			TotalRecommendations: s.Total,
			SuccessfulCount:      s.Successes,
			FailedCount:          s.Total - s.Successes,
			AvgConfidence:        s.AvgConfidence,
			AvgSuccessRate:       winRate,
			ConfidenceAdjustment: AdjustmentForWinRate(s.Successes, s.Total),
			LastUpdated:          now,
		}

		if err := l.store.UpsertPatternPerformance(ctx, perf); err != nil {
			l.logger.Warn().Str("pattern", s.Pattern).Err(err).Msg("performance upsert failed")
			continue
		}
		l.logger.Debug().Str("pattern", s.Pattern).Float64("win_rate", winRate).
			Int("adjustment", perf.ConfidenceAdjustment).Msg("pattern performance updated")
	}

	return nil
}

// AdjustmentForWinRate maps a win rate to its confidence adjustment through
// a fixed step table. Pure: same input always yields the same adjustment.
func AdjustmentForWinRate(successes, total int) int {
	if total <= 0 {
		return 0
	}
	winRate := float64(successes) / float64(total) * 100
	switch {
	case winRate >= 70:
		return 5
	case winRate >= 60:
		return 3
	case winRate <= 30:
		return -5
	case winRate <= 40:
		return -3
	default:
		return 0
	}
}
