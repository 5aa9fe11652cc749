// Package filter provides reusable client-side asset filtering for CLI
// listings, applied after the remote query narrowed the result set.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/medialens/medialens/internal/models"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style) matched against the display name.
	// Empty means include all.
	// Example: []string{"*.png", "banner*"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	// Example: []string{"draft*", "tmp*"}
	Exclude []string

	// Search terms (case-insensitive substring match against the public ID).
	// An asset must match ALL search terms to be included.
	// Example: []string{"hero", "2026"}
	Search []string

	// PathInclude patterns match against the full public ID.
	// Supports standard glob patterns plus ** for multi-folder matching.
	// Example: []string{"products/*", "**/hero"}
	PathInclude []string
}

// ApplyToAssets filters a slice of assets based on the filter configuration.
func ApplyToAssets(assets []models.Asset, config Config) []models.Asset {
	if len(config.Include) == 0 && len(config.Exclude) == 0 && len(config.Search) == 0 && len(config.PathInclude) == 0 {
		// No filters, return all assets
		return assets
	}

	filtered := make([]models.Asset, 0, len(assets))
	for _, asset := range assets {
		// First check path filter if specified
		if len(config.PathInclude) > 0 {
			if !matchesPathFilter(asset.PublicID, config.PathInclude) {
				continue
			}
		}

		// Then check other filters
		if matchesFilter(&asset, config) {
			filtered = append(filtered, asset)
		}
	}
	return filtered
}

// matchesFilter checks if an asset matches the name and search filters.
func matchesFilter(asset *models.Asset, config Config) bool {
	name := asset.DisplayName()
	if asset.Format != "" {
		name += "." + asset.Format
	}

	// 1. Check exclude patterns first (highest priority)
	for _, pattern := range config.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return false // Excluded
		}
		if matched, _ := filepath.Match(pattern, asset.PublicID); matched {
			return false // Excluded
		}
	}

	// 2. Check include patterns
	if len(config.Include) > 0 {
		included := false
		for _, pattern := range config.Include {
			if matched, _ := filepath.Match(pattern, name); matched {
				included = true
				break
			}
			if matched, _ := filepath.Match(pattern, asset.PublicID); matched {
				included = true
				break
			}
		}
		if !included {
			return false // Not included by any pattern
		}
	}

	// 3. Check search terms (case-insensitive substring match)
	if len(config.Search) > 0 {
		lowerID := strings.ToLower(asset.PublicID)
		for _, term := range config.Search {
			if !strings.Contains(lowerID, strings.ToLower(term)) {
				return false // Must match ALL search terms
			}
		}
	}

	return true // Passed all filters
}

// matchesPathFilter checks if a public ID matches any of the path patterns.
// Supports glob patterns including ** for multi-folder matching.
func matchesPathFilter(publicID string, patterns []string) bool {
	publicID = filepath.ToSlash(publicID)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matchPathPattern(publicID, pattern) {
			return true
		}
	}
	return false
}

// matchPathPattern matches a single path against a pattern.
// Supports standard glob patterns plus ** for recursive folder matching.
func matchPathPattern(path, pattern string) bool {
	// Handle ** patterns specially
	if strings.Contains(pattern, "**") {
		return matchDoubleStarPattern(path, pattern)
	}

	// Standard glob match
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}

// matchDoubleStarPattern handles ** glob patterns for multi-folder matching.
// Examples:
//   - "**/hero" matches "hero", "a/hero", "a/b/c/hero"
//   - "products/**" matches "products/anything", "products/a/b/c"
//   - "run_*/*.dat" style single-star patterns fall through to Match
func matchDoubleStarPattern(path, pattern string) bool {
	// Case 1: Pattern starts with **/ (match any prefix)
	if strings.HasPrefix(pattern, "**/") {
		suffix := pattern[3:]
		if matchPathPattern(path, suffix) {
			return true
		}
		parts := strings.Split(path, "/")
		for i := range parts {
			subPath := strings.Join(parts[i:], "/")
			if matchPathPattern(subPath, suffix) {
				return true
			}
		}
		return false
	}

	// Case 2: Pattern ends with /** (match any suffix)
	if strings.HasSuffix(pattern, "/**") {
		prefix := pattern[:len(pattern)-3]
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
		parts := strings.Split(path, "/")
		for i := 1; i <= len(parts); i++ {
			subPath := strings.Join(parts[:i], "/")
			matched, _ := filepath.Match(prefix, subPath)
			if matched {
				return true
			}
		}
		return false
	}

	// Case 3: ** in the middle (e.g., "products/**/hero")
	doubleStar := strings.Index(pattern, "/**/")
	if doubleStar != -1 {
		prefix := pattern[:doubleStar]
		suffix := pattern[doubleStar+4:]

		parts := strings.Split(path, "/")
		for i := 1; i < len(parts); i++ {
			prefixPath := strings.Join(parts[:i], "/")
			if matched, _ := filepath.Match(prefix, prefixPath); matched {
				for j := i; j <= len(parts); j++ {
					suffixPath := strings.Join(parts[j:], "/")
					if matchPathPattern(suffixPath, suffix) {
						return true
					}
				}
			}
		}
		return false
	}

	// Case 4: ** is the whole pattern (match everything)
	if pattern == "**" {
		return true
	}

	// Fallback: treat ** as * (match any single segment)
	replaced := strings.ReplaceAll(pattern, "**", "*")
	matched, _ := filepath.Match(replaced, path)
	return matched
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.png,*.jpg" -> []string{"*.png", "*.jpg"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
