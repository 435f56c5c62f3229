package scanner

// DefaultUniverse is the built-in daily-plays ticker set, merged with any
// caller-provided candidates
var DefaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "AMD",
	"SPY", "QQQ", "IWM", "DIA",
	"NFLX", "DIS", "BABA", "PYPL", "SQ", "ROKU", "SNAP", "UBER",
	"F", "GM", "NIO", "LCID", "RIVN",
	"BA", "GE", "CAT", "DE",
	"JPM", "BAC", "GS", "MS", "C",
	"XOM", "CVX", "COP", "SLB",
	"PFE", "JNJ", "MRNA", "BNTX",
	"WMT", "TGT", "COST", "HD", "LOW",
}

// MergeUniverse combines the default universe with caller-provided inputs,
// deduplicating by ticker. Caller entries win so their short-interest data
// is preserved.
func MergeUniverse(inputs []TickerInput) []TickerInput {
	seen := make(map[string]bool, len(inputs))
	merged := make([]TickerInput, 0, len(inputs)+len(DefaultUniverse))

	for _, in := range inputs {
		if in.Ticker == "" || seen[in.Ticker] {
			continue
		}
		seen[in.Ticker] = true
		merged = append(merged, in)
	}
	for _, ticker := range DefaultUniverse {
		if !seen[ticker] {
			seen[ticker] = true
			merged = append(merged, TickerInput{Ticker: ticker})
		}
	}

	return merged
}
