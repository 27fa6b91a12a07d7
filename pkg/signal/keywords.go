package signal

import "strings"

// MatchAny returns the first keyword that occurs in text. Matching is a
// case-insensitive substring search.
func MatchAny(text string, keywords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return k, true
		}
	}
	return "", false
}
