package rules

import "strings"

// HasCommonInterest reports whether the two interest lists share at least one tag.
// Nil lists and blank tags never match.
func HasCommonInterest(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	seen := make(map[string]struct{}, len(a))
	for _, tag := range a {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		seen[tag] = struct{}{}
	}

	for _, tag := range b {
		if _, ok := seen[strings.TrimSpace(tag)]; ok {
			return true
		}
	}
	return false
}
