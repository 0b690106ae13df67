package validators

import "strings"

// SanitizeString normalizes free-text query input (search terms, filter
// values): trims whitespace, drops control characters, and caps the length.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input)
	trimmed := strings.TrimSpace(cleaned)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
