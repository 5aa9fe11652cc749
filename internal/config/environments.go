// Package config provides configuration management for MediaLens.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/medialens/medialens/internal/constants"
)

// Environment holds one credential set for a cloud on the media platform.
//
// Credentials file format (JSON, keyed by cloud name):
//
//	{
//	  "my-cloud": {
//	    "apiKey": "123456789012345",
//	    "apiSecret": "abcdefghijklmnopqrstuvwxyz",
//	    "uploadPreset": "unsigned-web"
//	  }
//	}
//
// File locations:
//   - Global: ~/.config/medialens/environments.json
//     (Windows: %USERPROFILE%\.config\medialens\environments.json)
//   - Workspace: .medialens/environments.json relative to the working
//     directory; entries override the global file per cloud name.
type Environment struct {
	// CloudName is the platform cloud identifier. Populated from the JSON
	// object key, not stored in the value.
	CloudName string `json:"-"`

	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`

	// UploadPreset is an optional server-side bundle of upload parameters.
	// When set, uploads reference it by name and may go unsigned.
	UploadPreset string `json:"uploadPreset,omitempty"`
}

// Environments is the merged set of credential sets, keyed by cloud name.
type Environments map[string]Environment

// Validation errors
var (
	ErrNoEnvironments   = errors.New("no environments configured")
	ErrMissingAPIKey    = errors.New("apiKey is required")
	ErrMissingAPISecret = errors.New("apiSecret is required")
	ErrEmptyCloudName   = errors.New("cloud name must not be empty")
	ErrUnknownCloud     = errors.New("unknown cloud name")
)

// MalformedConfigError wraps a JSON parse failure so callers can fail softly
// (surface a notification) instead of treating it like a hard I/O error.
type MalformedConfigError struct {
	Path string
	Err  error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed credentials file %s: %v", e.Path, e.Err)
}

func (e *MalformedConfigError) Unwrap() error { return e.Err }

// Validate checks one environment's credential set.
func (e Environment) Validate() error {
	if strings.TrimSpace(e.CloudName) == "" {
		return ErrEmptyCloudName
	}
	if strings.TrimSpace(e.APIKey) == "" {
		return fmt.Errorf("%s: %w", e.CloudName, ErrMissingAPIKey)
	}
	if strings.TrimSpace(e.APISecret) == "" {
		return fmt.Errorf("%s: %w", e.CloudName, ErrMissingAPISecret)
	}
	return nil
}

// Names returns the cloud names in sorted order for stable display.
func (envs Environments) Names() []string {
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the environment for a cloud name.
func (envs Environments) Get(name string) (Environment, error) {
	env, ok := envs[name]
	if !ok {
		return Environment{}, fmt.Errorf("%w: %s", ErrUnknownCloud, name)
	}
	return env, nil
}

// DefaultEnvironmentsPath returns the path of the global credentials file.
func DefaultEnvironmentsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.EnvironmentsFileName), nil
}

// WorkspaceEnvironmentsPath returns the workspace-relative credentials file
// path for a working directory.
func WorkspaceEnvironmentsPath(workDir string) string {
	return filepath.Join(workDir, constants.WorkspaceDirName, constants.EnvironmentsFileName)
}

// LoadEnvironments reads the global credentials file and merges the
// workspace file over it (workspace wins per cloud name). A missing file is
// not an error; a malformed file returns *MalformedConfigError.
//
// globalPath may be empty to use the default location. workDir may be empty
// to skip the workspace overlay.
func LoadEnvironments(globalPath, workDir string) (Environments, error) {
	if globalPath == "" {
		var err error
		globalPath, err = DefaultEnvironmentsPath()
		if err != nil {
			return Environments{}, nil // no home dir, nothing to load
		}
	}

	merged := Environments{}

	if err := readEnvironmentsFile(globalPath, merged); err != nil {
		return nil, err
	}

	if workDir != "" {
		if err := readEnvironmentsFile(WorkspaceEnvironmentsPath(workDir), merged); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

// readEnvironmentsFile parses one credentials file into dst, overriding
// existing entries.
func readEnvironmentsFile(path string, dst Environments) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	var raw map[string]Environment
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedConfigError{Path: path, Err: err}
	}

	for name, env := range raw {
		env.CloudName = name
		dst[name] = env
	}
	return nil
}

// SaveEnvironments writes the credential sets to path atomically with 0600
// permissions (the file holds API secrets).
func SaveEnvironments(envs Environments, path string) error {
	if path == "" {
		var err error
		path, err = DefaultEnvironmentsPath()
		if err != nil {
			return fmt.Errorf("failed to determine credentials path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Strip the redundant CloudName before encoding; the object key carries it.
	out := make(map[string]Environment, len(envs))
	for name, env := range envs {
		env.CloudName = ""
		out[name] = env
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	data = append(data, '\n')

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set credentials permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

// PlaceholderEnvironments returns the sample credential set written on first
// run so users see the expected shape instead of an empty file.
func PlaceholderEnvironments() Environments {
	return Environments{
		"my-cloud": {
			APIKey:    "YOUR_API_KEY",
			APISecret: "YOUR_API_SECRET",
		},
	}
}

// EnsureEnvironmentsFile creates the global credentials file with placeholder
// content if it does not exist. Returns true when a new file was written so
// callers can surface a first-run notification.
func EnsureEnvironmentsFile(path string) (bool, error) {
	if path == "" {
		var err error
		path, err = DefaultEnvironmentsPath()
		if err != nil {
			return false, fmt.Errorf("failed to determine credentials path: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat credentials file: %w", err)
	}

	if err := SaveEnvironments(PlaceholderEnvironments(), path); err != nil {
		return false, err
	}
	return true, nil
}

// IsPlaceholder reports whether an environment still carries the sample
// values written by EnsureEnvironmentsFile.
func (e Environment) IsPlaceholder() bool {
	return e.APIKey == "YOUR_API_KEY" || e.APISecret == "YOUR_API_SECRET"
}
