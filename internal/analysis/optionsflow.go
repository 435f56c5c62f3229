package analysis

import (
	"sort"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

// OptionsFlow summarizes activity across the three out-of-the-money strikes
// nearest the money. Derived per scan and embedded into recommendations,
// never persisted on its own.
type OptionsFlow struct {
	FlowScore       int     `json:"flow_score"` // 0-100
	HasPattern      bool    `json:"has_pattern"`
	AvgVolume       float64 `json:"avg_volume"`
	AvgOpenInterest float64 `json:"avg_open_interest"`
	TotalVolume     float64 `json:"total_volume"`
	TotalOI         float64 `json:"total_oi"`
	StrikesAnalyzed int     `json:"strikes_analyzed"`
}

// OptionType selects the chain side
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// FlowAnalyzer scores "building conviction" in near-the-money strikes
type FlowAnalyzer struct{}

// NewFlowAnalyzer creates a flow analyzer
func NewFlowAnalyzer() *FlowAnalyzer {
	return &FlowAnalyzer{}
}

// Analyze selects the 10 nearest OTM strikes on the relevant side, takes the
// 3 closest to price ordered furthest-to-nearest, and scores their
// volume/open-interest progression. With fewer than 3 usable strikes it
// returns a zero result, never an error.
func (fa *FlowAnalyzer) Analyze(currentPrice float64, optionType OptionType, chain *marketdata.OptionsChain) OptionsFlow {
	if chain == nil || currentPrice <= 0 {
		return OptionsFlow{}
	}

	var side []marketdata.OptionContract
	if optionType == Call {
		for _, row := range chain.Calls {
			if row.Strike > currentPrice {
				side = append(side, row)
			}
		}
		// Nearest strikes first for calls: ascending
		sort.Slice(side, func(i, j int) bool { return side[i].Strike < side[j].Strike })
	} else {
		for _, row := range chain.Puts {
			if row.Strike < currentPrice {
				side = append(side, row)
			}
		}
		// Nearest strikes first for puts: descending
		sort.Slice(side, func(i, j int) bool { return side[i].Strike > side[j].Strike })
	}

	if len(side) > 10 {
		side = side[:10]
	}
	if len(side) < 3 {
		return OptionsFlow{StrikesAnalyzed: len(side)}
	}

	// Three closest to the money, ordered furthest to nearest so a rising
	// sequence means conviction building toward the money
	nearest := []marketdata.OptionContract{side[2], side[1], side[0]}

	var totalVolume, totalOI float64
	for _, row := range nearest {
		totalVolume += row.Volume
		totalOI += row.OpenInterest
	}
	avgVolume := totalVolume / 3
	avgOI := totalOI / 3

	volumeIncreasing := nearest[0].Volume < nearest[1].Volume && nearest[1].Volume < nearest[2].Volume
	oiIncreasing := nearest[0].OpenInterest < nearest[1].OpenInterest && nearest[1].OpenInterest < nearest[2].OpenInterest

	score := 0
	if volumeIncreasing {
		score += 40
	}
	if oiIncreasing {
		score += 30
	}
	if avgVolume >= 100 || avgOI >= 500 {
		score += 20
	}
	// Fresh positioning: today's volume outpacing half the standing interest
	if totalOI > 0 && totalVolume > totalOI/2 {
		score += 10
	}
	if score > 100 {
		score = 100
	}

	return OptionsFlow{
		FlowScore:       score,
		HasPattern:      volumeIncreasing || oiIncreasing,
		AvgVolume:       avgVolume,
		AvgOpenInterest: avgOI,
		TotalVolume:     totalVolume,
		TotalOI:         totalOI,
		StrikesAnalyzed: 3,
	}
}
