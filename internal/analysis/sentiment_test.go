package analysis

import (
	"testing"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

func TestScoreNews(t *testing.T) {
	tests := []struct {
		name   string
		titles []string
		want   Sentiment
	}{
		{"positive majority", []string{"Shares surge on record growth", "Analyst upgrade"}, Positive},
		{"negative majority", []string{"Stock plunges after earnings miss", "Lawsuit filed"}, Negative},
		{"tie is neutral", []string{"Rally fades as shares drop"}, NeutralS},
		{"no keywords", []string{"Quarterly report released"}, NeutralS},
		{"empty", nil, NeutralS},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]marketdata.NewsItem, len(tc.titles))
			for i, title := range tc.titles {
				items[i] = marketdata.NewsItem{Title: title}
			}
			if got := ScoreNews(items); got != tc.want {
				t.Errorf("ScoreNews = %s, want %s", got, tc.want)
			}
		})
	}
}
