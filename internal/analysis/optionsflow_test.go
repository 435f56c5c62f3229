package analysis

import (
	"testing"

	"github.com/moddonthemix-lab/lemonshortbot/internal/marketdata"
)

func callChain(contracts ...marketdata.OptionContract) *marketdata.OptionsChain {
	return &marketdata.OptionsChain{Symbol: "TEST", Calls: contracts}
}

func strike(price, volume, oi float64) marketdata.OptionContract {
	return marketdata.OptionContract{Strike: price, Volume: volume, OpenInterest: oi}
}

func TestFlowIncreasingVolumeAndOI(t *testing.T) {
	fa := NewFlowAnalyzer()

	// Nearest strike (105) has the most activity, building toward the money
	chain := callChain(
		strike(105, 300, 900),
		strike(110, 200, 600),
		strike(115, 100, 300),
	)

	flow := fa.Analyze(100, Call, chain)
	if !flow.HasPattern {
		t.Error("Increasing progression should register as a pattern")
	}
	// 40 volume + 30 OI + 20 liquidity + 10 fresh positioning (600 > 1800/2 is false)
	if flow.FlowScore != 90 {
		t.Errorf("Expected flow score 90, got %d", flow.FlowScore)
	}
	if flow.StrikesAnalyzed != 3 {
		t.Errorf("Expected 3 strikes analyzed, got %d", flow.StrikesAnalyzed)
	}
}

func TestFlowConstantActivityIsNotAPattern(t *testing.T) {
	fa := NewFlowAnalyzer()

	chain := callChain(
		strike(105, 10, 10),
		strike(110, 10, 10),
		strike(115, 10, 10),
	)

	flow := fa.Analyze(100, Call, chain)
	if flow.HasPattern {
		t.Error("Flat volume and OI should not register as a pattern")
	}
	// Only fresh positioning fires: 30 volume > 30/2 OI
	if flow.FlowScore != 10 {
		t.Errorf("Expected flow score 10, got %d", flow.FlowScore)
	}
}

func TestFlowTooFewStrikes(t *testing.T) {
	fa := NewFlowAnalyzer()

	chain := callChain(strike(105, 500, 500), strike(110, 400, 400))
	flow := fa.Analyze(100, Call, chain)
	if flow.FlowScore != 0 || flow.HasPattern {
		t.Errorf("Fewer than 3 OTM strikes should produce a zero result, got %+v", flow)
	}
	if flow.StrikesAnalyzed != 2 {
		t.Errorf("Expected 2 strikes counted, got %d", flow.StrikesAnalyzed)
	}
}

func TestFlowPutSideUsesStrikesBelowPrice(t *testing.T) {
	fa := NewFlowAnalyzer()

	chain := &marketdata.OptionsChain{
		Symbol: "TEST",
		Puts: []marketdata.OptionContract{
			strike(95, 300, 900),
			strike(90, 200, 600),
			strike(85, 100, 300),
			strike(105, 9999, 9999), // ITM put, ignored
		},
	}

	flow := fa.Analyze(100, Put, chain)
	if flow.StrikesAnalyzed != 3 {
		t.Fatalf("Expected 3 OTM puts analyzed, got %d", flow.StrikesAnalyzed)
	}
	if !flow.HasPattern {
		t.Error("Puts building toward the money should register as a pattern")
	}
}

func TestFlowNilChain(t *testing.T) {
	fa := NewFlowAnalyzer()
	flow := fa.Analyze(100, Call, nil)
	if flow.FlowScore != 0 {
		t.Errorf("Nil chain should produce zero flow, got %d", flow.FlowScore)
	}
}
