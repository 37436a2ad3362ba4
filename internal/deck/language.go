package deck

import "strings"

// SameLanguage reports whether a and b name the same language, ignoring
// case. Empty values never match.
func SameLanguage(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// normalizeLanguage lowercases a language code for storage.
func normalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
