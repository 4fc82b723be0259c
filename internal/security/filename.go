package security

import "strings"

// maxFilenameLen bounds names built from driver or track identifiers.
const maxFilenameLen = 128

// SanitizeFilename makes a safe file name from an arbitrary identifier.
// Runs of characters other than ASCII letters, digits, dot, underscore and
// dash collapse to one underscore; leading and trailing dots and
// underscores are trimmed. An empty result becomes "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
