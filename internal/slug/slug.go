// Package slug derives URL-safe identifiers from titles and names.
package slug

import "strings"

// Slugify lowercases s and collapses every run of characters outside [a-z0-9]
// into a single hyphen. The result never starts or ends with a hyphen.
func Slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	pending := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}
