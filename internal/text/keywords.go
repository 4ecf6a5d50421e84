package text

import "strings"

// #region extract
// ExtractKeywords normalizes s and returns its distinct tokens in first-seen
// order. Empty or punctuation-only input yields nil.
func ExtractKeywords(s string) []string {
	return dedupe(strings.Split(Normalize(s), " "))
}

// NormalizeAll normalizes each raw keyword, dropping empties and duplicates.
// The result is never nil, so callers can tell "computed, empty" apart from
// "not computed".
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, k := range raw {
		n := Normalize(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// #endregion extract

// #region overlap
// Overlap returns |set(a) ∩ set(b)|. Duplicates on either side never
// inflate the count.
func Overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	counted := make(map[string]bool, len(a))
	count := 0
	for _, t := range a {
		if set[t] && !counted[t] {
			counted[t] = true
			count++
		}
	}
	return count
}

// #endregion overlap
