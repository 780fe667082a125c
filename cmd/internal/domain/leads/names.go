package leads

import "strings"

var businessSuffixes = []string{" inc", " llc", " corp", " company", " co", " ltd"}

// SimilarNames reports whether two business names most likely refer to
// the same company, ignoring case, punctuation and common legal suffixes.
func SimilarNames(a, b string) bool {
	a, b = canonicalName(a), canonicalName(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func canonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(",", "", ".", "").Replace(name)
	for _, suffix := range businessSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}
