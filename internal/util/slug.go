package util

import "strings"

// Slug converts an arbitrary display name into a stable identifier: lowercase
// with every non-alphanumeric rune replaced by '_'. Used to derive delegation
// tool names from agent names deterministically.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
