package match

// Levenshtein returns the edit distance between a and b counted in runes:
// the minimum number of single-rune insertions, deletions or substitutions
// turning one into the other.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	// keep the row over the shorter string
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			next := min(row[i]+1, row[i-1]+1, diag+cost)
			diag, row[i] = row[i], next
		}
	}

	return row[len(ra)]
}

// LevenshteinNormalized returns 1 - distance/longest length: 1.0 for equal
// strings, 0.0 for strings sharing nothing.
func LevenshteinNormalized(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

// NormalizedLevenshteinScore compares two identifiers after NormalizeIdent, so
// "PatientName" and "patient_name" score 1.0.
func NormalizedLevenshteinScore(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdent(a), NormalizeIdent(b))
}

// NormalizedLevenshteinScoreWithSuffixStrip is NormalizedLevenshteinScore with
// common suffixes ("id", "at", ...) removed first.
func NormalizedLevenshteinScoreWithSuffixStrip(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdentWithSuffixStrip(a), NormalizeIdentWithSuffixStrip(b))
}
