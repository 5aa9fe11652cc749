package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandGlobPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := expandGlobPatterns([]string{filepath.Join(dir, "*.png")})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2: %v", len(files), files)
	}

	// Duplicates collapse
	files, err = expandGlobPatterns([]string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "*.png"),
	})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files after dedup, want 2: %v", len(files), files)
	}

	if _, err := expandGlobPatterns([]string{filepath.Join(dir, "*.gif")}); err == nil {
		t.Error("expected error for pattern with no matches")
	}
}

func TestBuildChain(t *testing.T) {
	chain, err := buildChain(400, 300, "fill", "auto", "auto")
	if err != nil {
		t.Fatalf("buildChain failed: %v", err)
	}
	s := chain.String()
	for _, want := range []string{"c_fill", "w_400", "h_300", "f_auto", "q_auto"} {
		if !strings.Contains(s, want) {
			t.Errorf("chain %q missing %q", s, want)
		}
	}

	if _, err := buildChain(400, 0, "fill", "", ""); err == nil {
		t.Error("expected error without height")
	}
	if _, err := buildChain(400, 300, "stretch", "", ""); err == nil {
		t.Error("expected error for unknown crop mode")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
