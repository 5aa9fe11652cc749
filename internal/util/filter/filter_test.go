package filter

import (
	"testing"

	"github.com/medialens/medialens/internal/models"
)

func fixtureAssets() []models.Asset {
	return []models.Asset{
		{PublicID: "products/shoe", Format: "png"},
		{PublicID: "products/shirt", Format: "jpg"},
		{PublicID: "banners/hero-2026", Format: "png"},
		{PublicID: "drafts/tmp-banner", Format: "png"},
	}
}

func publicIDs(assets []models.Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.PublicID)
	}
	return ids
}

func TestApplyToAssets_NoFilters(t *testing.T) {
	assets := fixtureAssets()
	got := ApplyToAssets(assets, Config{})
	if len(got) != len(assets) {
		t.Errorf("no filters should return all assets, got %d of %d", len(got), len(assets))
	}
}

func TestApplyToAssets_Include(t *testing.T) {
	got := ApplyToAssets(fixtureAssets(), Config{Include: []string{"*.png"}})
	if len(got) != 3 {
		t.Fatalf("expected 3 png assets, got %v", publicIDs(got))
	}
}

func TestApplyToAssets_ExcludeWinsOverInclude(t *testing.T) {
	got := ApplyToAssets(fixtureAssets(), Config{
		Include: []string{"*.png"},
		Exclude: []string{"tmp-*"},
	})
	for _, a := range got {
		if a.PublicID == "drafts/tmp-banner" {
			t.Error("exclude pattern must take precedence over include")
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 assets, got %v", publicIDs(got))
	}
}

func TestApplyToAssets_SearchTermsAllMustMatch(t *testing.T) {
	got := ApplyToAssets(fixtureAssets(), Config{Search: []string{"HERO", "2026"}})
	if len(got) != 1 || got[0].PublicID != "banners/hero-2026" {
		t.Errorf("expected only hero-2026, got %v", publicIDs(got))
	}

	got = ApplyToAssets(fixtureAssets(), Config{Search: []string{"hero", "shoe"}})
	if len(got) != 0 {
		t.Errorf("asset must match ALL terms, got %v", publicIDs(got))
	}
}

func TestApplyToAssets_PathInclude(t *testing.T) {
	got := ApplyToAssets(fixtureAssets(), Config{PathInclude: []string{"products/*"}})
	if len(got) != 2 {
		t.Errorf("expected 2 product assets, got %v", publicIDs(got))
	}
}

func TestMatchDoubleStarPattern(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"hero", "**/hero", true},
		{"a/hero", "**/hero", true},
		{"a/b/c/hero", "**/hero", true},
		{"a/b/c/villain", "**/hero", false},
		{"products/x", "products/**", true},
		{"products/a/b/c", "products/**", true},
		{"products", "products/**", true},
		{"banners/x", "products/**", false},
		{"products/a/b/hero", "products/**/hero", true},
		{"anything/at/all", "**", true},
	}

	for _, tt := range tests {
		if got := matchPathPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchPathPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestParsePatternList(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"*.png", 1},
		{"*.png,*.jpg", 2},
		{" *.png , , *.jpg ", 2},
	}

	for _, tt := range tests {
		if got := ParsePatternList(tt.input); len(got) != tt.want {
			t.Errorf("ParsePatternList(%q) = %v, want %d entries", tt.input, got, tt.want)
		}
	}
}
