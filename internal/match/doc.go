// Package match provides name normalization, Levenshtein distance and
// candidate ranking used to suggest corrections for misspelt names in schema
// catalogs ("unknown component \"PatinetName\", did you mean PatientName?").
//
// Key functions:
//   - NormalizeIdent: folds identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks known names against a wanted one
//   - Suggest: returns the best few names above a score
package match
