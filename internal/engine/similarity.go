package engine

import "strings"

// JaccardSimilarity computes the Jaccard index of two string collections,
// normalized case-insensitively into sets: |intersection| / |union|.
//
// Returns a value in [0, 1]. If either input is empty after normalization
// the result is 0: an empty set is defined to have no similarity rather
// than an undefined one, which also avoids division by zero.
//
// The function is pure and deterministic for identical inputs regardless
// of input ordering or duplicate entries.
func JaccardSimilarity(a, b []string) float64 {
	setA := normalizeTermSet(a)
	setB := normalizeTermSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for term := range setA {
		if _, ok := setB[term]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// normalizeTermSet lowercases and trims each term and drops empties,
// collapsing duplicates into a set.
func normalizeTermSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		set[term] = struct{}{}
	}
	return set
}
