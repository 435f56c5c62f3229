package analysis

import (
	"strings"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// Sentiment is the coarse news classification used by the scorer
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	NeutralS Sentiment = "Neutral"
)

var positiveKeywords = []string{
	"surge", "soar", "jump", "rally", "gain", "beat", "upgrade", "bullish",
	"record", "growth", "profit", "strong", "breakout", "buy",
}

var negativeKeywords = []string{
	"plunge", "drop", "fall", "crash", "miss", "downgrade", "bearish",
	"loss", "weak", "lawsuit", "investigation", "recall", "sell", "cut",
}

// ScoreNews counts positive and negative keyword hits across headline
// titles. More positive hits wins Positive, more negative wins Negative,
// ties and empty input are Neutral.
func ScoreNews(items []marketdata.NewsItem) Sentiment {
	var positive, negative int
	for _, item := range items {
		title := strings.ToLower(item.Title)
		for _, kw := range positiveKeywords {
			if strings.Contains(title, kw) {
				positive++
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(title, kw) {
				negative++
			}
		}
	}
	switch {
	case positive > negative:
		return Positive
	case negative > positive:
		return Negative
	default:
		return NeutralS
	}
}
