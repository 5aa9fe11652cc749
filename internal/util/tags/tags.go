// Package tags provides tag normalization for asset tagging, shared by the
// CLI flags and the upload coordinator.
package tags

import "strings"

// NormalizeTags normalizes a list of tags by trimming whitespace,
// removing empty strings, and deduplicating. Order is preserved.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !seen[tag] {
			seen[tag] = true
			result = append(result, tag)
		}
	}
	return result
}

// ParseCommaSeparated splits a comma-separated string into normalized tags.
// The platform stores tags as a comma-joined list, so commas inside a tag
// are not supported.
func ParseCommaSeparated(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return NormalizeTags(parts)
}

// Join renders normalized tags in the comma-joined wire form the upload
// endpoint expects.
func Join(raw []string) string {
	return strings.Join(NormalizeTags(raw), ",")
}
