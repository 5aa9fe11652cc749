package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/medialens/medialens/internal/constants"
)

// Settings holds the non-credential app configuration. Credentials live in
// the JSON environments file; everything else is INI so users can edit it by
// hand without touching secrets.
//
// INI format:
//
//	[platform]
//	api_base_url = https://api.mediahub.io
//	delivery_base_url = https://cdn.mediahub.io
//
//	[environment]
//	active = my-cloud
//
//	[upload]
//	max_concurrent = 5
//	default_folder =
//
//	[notifications]
//	enabled = true
//	show_upload_complete = true
//	show_upload_failed = true
type Settings struct {
	// Platform endpoints
	APIBaseURL      string `ini:"api_base_url"`
	DeliveryBaseURL string `ini:"delivery_base_url"`

	// ActiveEnvironment is the persisted cloud name selected by 'env use'.
	ActiveEnvironment string `ini:"active"`

	// Upload settings
	Upload UploadSettings

	// Notification settings
	Notifications NotificationSettings
}

// UploadSettings contains defaults for the upload panel and CLI.
type UploadSettings struct {
	// MaxConcurrent bounds concurrent upload jobs. Range 1-10, default 5.
	MaxConcurrent int `ini:"max_concurrent"`

	// DefaultFolder is the destination folder used when none is given.
	DefaultFolder string `ini:"default_folder"`
}

// NotificationSettings contains settings for desktop notifications.
type NotificationSettings struct {
	// Enabled indicates whether notifications are shown. Default: true
	Enabled bool `ini:"enabled"`

	// ShowUploadComplete shows a notification when an upload completes.
	// Default: true
	ShowUploadComplete bool `ini:"show_upload_complete"`

	// ShowUploadFailed shows a notification when an upload fails.
	// Default: true
	ShowUploadFailed bool `ini:"show_upload_failed"`
}

// Validation errors
var (
	ErrMissingAPIBaseURL      = errors.New("api_base_url is required")
	ErrMissingDeliveryBaseURL = errors.New("delivery_base_url is required")
	ErrInvalidMaxConcurrent   = errors.New("max_concurrent must be between 1 and 10")
)

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		APIBaseURL:      "https://api.mediahub.io",
		DeliveryBaseURL: "https://cdn.mediahub.io",
		Upload: UploadSettings{
			MaxConcurrent: constants.DefaultMaxConcurrent,
		},
		Notifications: NotificationSettings{
			Enabled:            true,
			ShowUploadComplete: true,
			ShowUploadFailed:   true,
		},
	}
}

// LoadSettings loads configuration from an INI file.
// If the file doesn't exist, returns defaults and no error.
// If the file exists but is invalid, returns an error.
func LoadSettings(path string) (*Settings, error) {
	cfg := NewSettings()

	if path == "" {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	platformSection := iniFile.Section("platform")
	cfg.APIBaseURL = platformSection.Key("api_base_url").MustString(cfg.APIBaseURL)
	cfg.DeliveryBaseURL = platformSection.Key("delivery_base_url").MustString(cfg.DeliveryBaseURL)

	envSection := iniFile.Section("environment")
	cfg.ActiveEnvironment = envSection.Key("active").String()

	uploadSection := iniFile.Section("upload")
	cfg.Upload.MaxConcurrent = uploadSection.Key("max_concurrent").MustInt(constants.DefaultMaxConcurrent)
	cfg.Upload.DefaultFolder = uploadSection.Key("default_folder").String()

	notifySection := iniFile.Section("notifications")
	cfg.Notifications.Enabled = notifySection.Key("enabled").MustBool(true)
	cfg.Notifications.ShowUploadComplete = notifySection.Key("show_upload_complete").MustBool(true)
	cfg.Notifications.ShowUploadFailed = notifySection.Key("show_upload_failed").MustBool(true)

	return cfg, nil
}

// SaveSettings saves configuration to an INI file.
// Creates parent directories if they don't exist.
func SaveSettings(cfg *Settings, path string) error {
	if path == "" {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return fmt.Errorf("failed to determine settings path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	platformSection, err := iniFile.NewSection("platform")
	if err != nil {
		return fmt.Errorf("failed to create platform section: %w", err)
	}
	platformSection.Key("api_base_url").SetValue(cfg.APIBaseURL)
	platformSection.Key("delivery_base_url").SetValue(cfg.DeliveryBaseURL)

	envSection, err := iniFile.NewSection("environment")
	if err != nil {
		return fmt.Errorf("failed to create environment section: %w", err)
	}
	envSection.Key("active").SetValue(cfg.ActiveEnvironment)

	uploadSection, err := iniFile.NewSection("upload")
	if err != nil {
		return fmt.Errorf("failed to create upload section: %w", err)
	}
	uploadSection.Key("max_concurrent").SetValue(fmt.Sprintf("%d", cfg.Upload.MaxConcurrent))
	uploadSection.Key("default_folder").SetValue(cfg.Upload.DefaultFolder)

	notifySection, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifySection.Key("enabled").SetValue(fmt.Sprintf("%t", cfg.Notifications.Enabled))
	notifySection.Key("show_upload_complete").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowUploadComplete))
	notifySection.Key("show_upload_failed").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowUploadFailed))

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set settings permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// Validate checks whether the settings are usable.
func (cfg *Settings) Validate() error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return ErrMissingAPIBaseURL
	}
	if strings.TrimSpace(cfg.DeliveryBaseURL) == "" {
		return ErrMissingDeliveryBaseURL
	}
	if cfg.Upload.MaxConcurrent < constants.MinMaxConcurrent || cfg.Upload.MaxConcurrent > constants.MaxMaxConcurrent {
		return ErrInvalidMaxConcurrent
	}
	return nil
}
