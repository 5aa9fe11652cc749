package tags

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"trims", []string{" hero ", "web"}, []string{"hero", "web"}},
		{"drops empties", []string{"hero", "", "  "}, []string{"hero"}},
		{"dedup keeps order", []string{"b", "a", "b"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCommaSeparated(t *testing.T) {
	got := ParseCommaSeparated(" hero, web ,, hero ")
	want := []string{"hero", "web"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCommaSeparated = %v, want %v", got, want)
	}

	if got := ParseCommaSeparated("   "); got != nil {
		t.Errorf("blank input = %v, want nil", got)
	}
}

func TestJoin(t *testing.T) {
	if got := Join([]string{" hero ", "web", "hero"}); got != "hero,web" {
		t.Errorf("Join = %q, want hero,web", got)
	}
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}
