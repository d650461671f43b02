package names

import "sort"

// Unmatched is an odds-store name with no exact canonical counterpart and its closest
// canonical name.
type Unmatched struct {
	Candidate string
	BestMatch string
	Score     int
}

// FindUnmatched reports every candidate whose best canonical match, compared after Fold,
// scores below 100. Candidates present verbatim in canonical are skipped. Results are
// sorted by candidate. With an empty canonical list every candidate is reported with
// an empty BestMatch and score 0.
func FindUnmatched(candidates, canonical []string) []Unmatched {
	exact := make(map[string]struct{}, len(canonical))
	folded := make([]string, len(canonical))
	for i, c := range canonical {
		exact[c] = struct{}{}
		folded[i] = Fold(c)
	}

	var out []Unmatched
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		if _, ok := exact[cand]; ok {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}

		best, score := bestMatch(Fold(cand), canonical, folded)
		if score < 100 {
			out = append(out, Unmatched{Candidate: cand, BestMatch: best, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Candidate < out[j].Candidate })
	return out
}

// bestMatch returns the first canonical name with the highest score.
func bestMatch(foldedCand string, canonical, folded []string) (string, int) {
	best, bestScore := "", -1
	for i, f := range folded {
		if s := Ratio(foldedCand, f); s > bestScore {
			best, bestScore = canonical[i], s
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}
