package scanner

// EnsureMinimumCandidates backfills the filtered result set from the full
// scored pool when filters leave fewer than threshold survivors. Pool
// entries keep their PassedFilters=false marker so the caller can tell
// filter survivors from backfill. Both slices must already be sorted by
// confidence descending.
func EnsureMinimumCandidates(threshold int, filtered, pool []Candidate) []Candidate {
	if len(filtered) >= threshold {
		return filtered
	}

	out := make([]Candidate, 0, threshold)
	out = append(out, filtered...)

	seen := make(map[string]bool, len(filtered))
	for _, c := range filtered {
		seen[c.Ticker] = true
	}

	for _, c := range pool {
		if len(out) >= threshold {
			break
		}
		if seen[c.Ticker] {
			continue
		}
		seen[c.Ticker] = true
		out = append(out, c)
	}

	return out
}
