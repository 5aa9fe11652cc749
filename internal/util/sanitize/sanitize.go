// Package sanitize cleans user-supplied public IDs and folder paths before
// they go into upload parameters.
//
// Public IDs come from file names and free-form flags, so they can carry:
//   - Windows/Mac line endings and stray whitespace
//   - Invisible Unicode characters (zero-width spaces, BOM)
//   - Redundant or leading/trailing path separators
package sanitize

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// PublicID normalizes a public ID: invisible characters removed, whitespace
// runs collapsed to single underscores, path separators deduplicated and
// trimmed from the ends. Returns "" for input that sanitizes to nothing.
func PublicID(id string) string {
	id = removeInvisibleChars(id)
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	id = whitespaceRe.ReplaceAllString(id, "_")
	id = collapseSlashes(id)
	return strings.Trim(id, "/")
}

// FolderPath normalizes a destination folder path the same way, keeping the
// interior structure intact.
func FolderPath(path string) string {
	return PublicID(path)
}

// removeInvisibleChars removes zero-width and other invisible Unicode
// characters that sneak in from copy-paste.
func removeInvisibleChars(s string) string {
	invisibleChars := []string{
		"\u200B", // Zero-width space
		"\u200C", // Zero-width non-joiner
		"\u200D", // Zero-width joiner
		"\uFEFF", // Zero-width no-break space (BOM)
		"\u00AD", // Soft hyphen
		"\u2060", // Word joiner
		"\u180E", // Mongolian vowel separator
	}

	for _, char := range invisibleChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return s
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}
