package scanner

import "testing"

func scored(ticker string, confidence int, passed bool) Candidate {
	return Candidate{Ticker: ticker, Confidence: confidence, PassedFilters: passed}
}

func TestEnsureMinimumCandidatesNoBackfillNeeded(t *testing.T) {
	filtered := []Candidate{scored("A", 90, true), scored("B", 80, true)}
	pool := append(filtered, scored("C", 70, false))

	out := EnsureMinimumCandidates(2, filtered, pool)
	if len(out) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(out))
	}
	if out[0].Ticker != "A" || out[1].Ticker != "B" {
		t.Errorf("Filter survivors should be returned unchanged, got %v", out)
	}
}

func TestEnsureMinimumCandidatesBackfills(t *testing.T) {
	filtered := []Candidate{scored("A", 90, true)}
	pool := []Candidate{
		scored("A", 90, true),
		scored("B", 85, false),
		scored("C", 80, false),
		scored("D", 75, false),
	}

	out := EnsureMinimumCandidates(3, filtered, pool)
	if len(out) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(out))
	}
	if out[1].Ticker != "B" || out[2].Ticker != "C" {
		t.Errorf("Backfill should take the highest-confidence pool entries, got %v", out)
	}
	if out[1].PassedFilters {
		t.Error("Backfilled entries must keep PassedFilters=false")
	}
}

func TestEnsureMinimumCandidatesShortPool(t *testing.T) {
	pool := []Candidate{scored("A", 60, false)}
	out := EnsureMinimumCandidates(5, nil, pool)
	if len(out) != 1 {
		t.Errorf("A short pool yields what it has, got %d", len(out))
	}
}

func TestMergeUniverse(t *testing.T) {
	inputs := []TickerInput{
		{Ticker: "GME", ShortInterest: 40},
		{Ticker: "AAPL", ShortInterest: 2}, // also in the default universe
		{Ticker: ""},
	}

	merged := MergeUniverse(inputs)

	if merged[0].Ticker != "GME" {
		t.Errorf("Caller entries should come first, got %s", merged[0].Ticker)
	}

	count := 0
	for _, in := range merged {
		if in.Ticker == "AAPL" {
			count++
			if in.ShortInterest != 2 {
				t.Errorf("Caller's AAPL entry should win, got short interest %.0f", in.ShortInterest)
			}
		}
		if in.Ticker == "" {
			t.Error("Empty tickers should be dropped")
		}
	}
	if count != 1 {
		t.Errorf("AAPL should appear exactly once, got %d", count)
	}

	if len(merged) != len(DefaultUniverse)+1 {
		t.Errorf("Expected default universe plus GME, got %d entries", len(merged))
	}
}
