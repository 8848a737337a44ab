package match

import (
	"sort"
)

// Candidate is a known name scored against a wanted name.
type Candidate struct {
	Name string
	// Score is the best normalized Levenshtein similarity (0-1), with and
	// without suffix stripping.
	Score float64
	// Normalized is the candidate name after NormalizeIdent.
	Normalized string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every known name against want.
// Returns candidates sorted by score (descending), then by name.
func RankCandidates(want string, known []string) CandidateList {
	candidates := make(CandidateList, 0, len(known))

	wantNorm := NormalizeIdent(want)
	wantStripped := NormalizeIdentWithSuffixStrip(want)

	for _, name := range known {
		norm := NormalizeIdent(name)

		score := max(
			LevenshteinNormalized(norm, wantNorm),
			LevenshteinNormalized(NormalizeIdentWithSuffixStrip(name), wantStripped),
		)

		candidates = append(candidates, Candidate{Name: name, Score: score, Normalized: norm})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to limit known names that look like want, best first.
// Names scoring below minScore are dropped.
func Suggest(want string, known []string, minScore float64, limit int) []string {
	var out []string

	for _, c := range RankCandidates(want, known).AboveThreshold(minScore).Top(limit) {
		out = append(out, c.Name)
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates with score at or above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
