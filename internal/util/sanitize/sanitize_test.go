package sanitize

import "testing"

func TestPublicID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "products/shoe", "products/shoe"},
		{"trims whitespace", "  products/shoe  ", "products/shoe"},
		{"collapses spaces", "summer  sale banner", "summer_sale_banner"},
		{"strips zero-width", "pro\u200Bducts/shoe", "products/shoe"},
		{"strips bom", "\uFEFFhero", "hero"},
		{"dedupes slashes", "products//shoes///sneaker", "products/shoes/sneaker"},
		{"trims slashes", "/products/shoe/", "products/shoe"},
		{"empty", "   ", ""},
		{"newlines", "a\r\nb", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicID(tt.in); got != tt.want {
				t.Errorf("PublicID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFolderPath(t *testing.T) {
	if got := FolderPath("/campaigns/2026 summer/"); got != "campaigns/2026_summer" {
		t.Errorf("FolderPath = %q", got)
	}
}
