package match

import (
	"strings"
	"unicode"
)

// suffixes stripped by NormalizeIdentWithSuffixStrip, longest first.
var suffixes = []string{"timestamp", "ids", "utc", "id", "at"}

// NormalizeIdent folds a schema or field name for fuzzy comparison: CamelCase
// is split, separators (_ - space) are dropped and the result is lowercased.
// "PatientName", "patient_name" and "patient-name" all give "patientname".
func NormalizeIdent(s string) string {
	return stripSeparators(strings.ToLower(strings.Join(tokenizeCamelCase(s), "")))
}

// NormalizeIdentWithSuffixStrip normalizes s and removes one common suffix
// ("id", "at", "utc", ...) unless nothing would be left.
func NormalizeIdentWithSuffixStrip(s string) string {
	n := NormalizeIdent(s)

	for _, suffix := range suffixes {
		if len(n) > len(suffix) && strings.HasSuffix(n, suffix) {
			return strings.TrimSuffix(n, suffix)
		}
	}

	return n
}

// TokenizeIdent splits an identifier into lowercase words.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// tokenizeCamelCase splits on separators and case changes:
//   - "SampleID" -> ["Sample", "ID"]
//   - "QcInfo" -> ["Qc", "Info"]
//   - "LISHost" -> ["LIS", "Host"]
//   - "laboratory_id" -> ["laboratory", "id"]
func tokenizeCamelCase(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports whether runes[i] begins a new word: a lower-to-upper
// transition, or the last capital of an acronym followed by a lowercase rune.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return r
	}, s)
}
