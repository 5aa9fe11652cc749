package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/medialens/medialens/internal/constants"
)

// The file and directory names are shared with the constants package so the
// CLI and panels describe the same locations the loader actually reads.
func TestPathsUseSharedNames(t *testing.T) {
	credPath, err := DefaultEnvironmentsPath()
	if err != nil {
		t.Fatalf("DefaultEnvironmentsPath failed: %v", err)
	}
	wantTail := filepath.Join(constants.ConfigDir, constants.EnvironmentsFileName)
	if !strings.HasSuffix(credPath, wantTail) {
		t.Errorf("credentials path %q does not end in %q", credPath, wantTail)
	}

	settingsPath, err := DefaultSettingsPath()
	if err != nil {
		t.Fatalf("DefaultSettingsPath failed: %v", err)
	}
	wantTail = filepath.Join(constants.ConfigDir, constants.SettingsFileName)
	if !strings.HasSuffix(settingsPath, wantTail) {
		t.Errorf("settings path %q does not end in %q", settingsPath, wantTail)
	}

	workspace := WorkspaceEnvironmentsPath("/work")
	want := filepath.Join("/work", constants.WorkspaceDirName, constants.EnvironmentsFileName)
	if workspace != want {
		t.Errorf("workspace path = %q, want %q", workspace, want)
	}
}

func TestNewSettingsUsesSharedDefaults(t *testing.T) {
	cfg := NewSettings()
	if cfg.Upload.MaxConcurrent != constants.DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, constants.DefaultMaxConcurrent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Upload.MaxConcurrent = constants.MaxMaxConcurrent + 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error above the concurrency cap")
	}
}
