// Package config provides configuration management for MediaLens.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/medialens/medialens/internal/constants"
)

// configDir returns the MediaLens config directory.
//   - Windows: %USERPROFILE%\.config\medialens
//   - Unix: ~/.config/medialens
func configDir() (string, error) {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		return filepath.Join(userProfile, ".config", constants.ConfigDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.ConfigDir), nil
}

// DefaultSettingsPath returns the path of the app settings INI file.
func DefaultSettingsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.SettingsFileName), nil
}

// LogDirectory returns the directory for MediaLens log files.
// Falls back to a temp directory when no config root is resolvable.
func LogDirectory() string {
	dir, err := configDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "medialens-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
// Uses 0700 permissions to restrict log access to the owner.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}
