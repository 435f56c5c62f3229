package scoring

import (
	"fmt"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// QualityResult is the contract-quality delta applied after confidence
// scoring, with human-readable warnings. The check never rejects a contract:
// the scan is built to surface ranked candidates even under thin liquidity.
type QualityResult struct {
	Delta    int      `json:"delta"` // Roughly [-55, +50]
	Warnings []string `json:"warnings"`
}

// CheckContractQuality scores spread, traded volume, and open interest for
// the chosen strike's quote, each tier independently.
func CheckContractQuality(contract *marketdata.OptionContract) QualityResult {
	result := QualityResult{Warnings: make([]string, 0, 3)}
	if contract == nil {
		result.Delta = -15
		result.Warnings = append(result.Warnings, "No contract quote available")
		return result
	}

	// Spread quality
	if contract.Bid <= 0 || contract.Ask <= 0 {
		result.Delta -= 15
		result.Warnings = append(result.Warnings, "Missing bid/ask data")
	} else {
		spreadPct := (contract.Ask - contract.Bid) / contract.Ask * 100
		switch {
		case spreadPct < 5:
			result.Delta += 20
		case spreadPct < 10:
			result.Delta += 15
		case spreadPct < 20:
			result.Delta += 5
		case spreadPct < 35:
			result.Warnings = append(result.Warnings, fmt.Sprintf("Moderate spread (%.1f%% of ask)", spreadPct))
		case spreadPct < 50:
			result.Delta -= 10
			result.Warnings = append(result.Warnings, fmt.Sprintf("Wide spread (%.1f%% of ask)", spreadPct))
		default:
			result.Delta -= 25
			result.Warnings = append(result.Warnings, fmt.Sprintf("Very wide spread (%.1f%% of ask) - use limit orders", spreadPct))
		}
	}

	// Today's traded volume
	switch {
	case contract.Volume >= 100:
		result.Delta += 15
	case contract.Volume >= 50:
		result.Delta += 10
	case contract.Volume >= 10:
		result.Delta += 5
	case contract.Volume >= 1:
		result.Warnings = append(result.Warnings, "Low contract volume today")
	default:
		result.Delta -= 15
		result.Warnings = append(result.Warnings, "No contracts traded today")
	}

	// Open interest
	switch {
	case contract.OpenInterest >= 500:
		result.Delta += 15
	case contract.OpenInterest >= 100:
		result.Delta += 10
	case contract.OpenInterest >= 25:
		result.Delta += 5
	case contract.OpenInterest >= 1:
		result.Warnings = append(result.Warnings, "Low open interest")
	default:
		result.Delta -= 15
		result.Warnings = append(result.Warnings, "No open interest at this strike")
	}

	return result
}

// ApplyQuality adjusts a confidence value by the quality delta, re-clamping
// to the scorer's bounds.
func ApplyQuality(confidence int, quality QualityResult) int {
	confidence += quality.Delta
	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
