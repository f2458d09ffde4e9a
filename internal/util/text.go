package util

import (
	"strings"
)

// Slugify converts a title into a URL-safe slug: lowercase ASCII
// alphanumeric runs joined by single dashes, trimmed, capped at 80 chars.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash

	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}

// TruncateWords returns the first n words of s, with an ellipsis when truncated
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}
