package notify

import (
	"testing"

	"github.com/medialens/medialens/internal/config"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestNewNotifier(t *testing.T) {
	n := NewNotifier(config.NewSettings().Notifications, nil)
	if n == nil {
		t.Fatal("NewNotifier returned nil")
	}
	if !n.IsEnabled() {
		t.Error("Expected notifier to be enabled with default settings")
	}

	n2 := NewNotifier(config.NotificationSettings{Enabled: false}, nil)
	if n2.IsEnabled() {
		t.Error("Expected notifier to be disabled when settings disable it")
	}
}

func TestSetEnabled(t *testing.T) {
	n := NewNotifier(config.NewSettings().Notifications, nil)

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected disabled after SetEnabled(false)")
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Error("Expected enabled after SetEnabled(true)")
	}
}

func TestNotifierDisabled_NoSend(t *testing.T) {
	// When disabled, notification methods should not panic or error
	n := NewNotifier(config.NotificationSettings{Enabled: false}, nil)

	// These should all be no-ops when disabled
	n.UploadComplete("photo.png", "products/photo")
	n.UploadFailed("photo.png", "test error")
	n.BatchComplete(3, 1)
	n.ConfigProblem("missing credentials")

	// If we get here without panicking, the test passes
}
