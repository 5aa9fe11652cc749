package constants

import (
	"time"
)

// ConfigDir is the directory name under the user config root that holds
// all MediaLens configuration files.
const ConfigDir = "medialens"

// Credentials and settings file names
const (
	// EnvironmentsFileName - JSON file mapping cloud name to credentials
	EnvironmentsFileName = "environments.json"

	// WorkspaceDirName - workspace-relative directory whose environments.json
	// overrides the global one
	WorkspaceDirName = ".medialens"

	// SettingsFileName - INI file with non-credential app settings
	SettingsFileName = "settings"
)

// Upload limits
const (
	// DefaultMaxConcurrent - default concurrent upload jobs
	DefaultMaxConcurrent = 5

	// MinMaxConcurrent - minimum concurrent operations (sequential mode)
	MinMaxConcurrent = 1

	// MaxMaxConcurrent - maximum concurrent operations allowed
	MaxMaxConcurrent = 10

	// MaxRemoteURLBytes - cap on the size of a remote-URL source we will
	// relay through the upload endpoint (2 GB)
	MaxRemoteURLBytes = 2 * 1024 * 1024 * 1024
)

// Listing and pagination
const (
	// DefaultPageSize - results requested per list call
	DefaultPageSize = 100

	// MaxPageSize - largest page the platform accepts
	MaxPageSize = 500

	// MaxPaginationPages - maximum pages to fetch before stopping (prevents
	// infinite loops on a misbehaving cursor)
	MaxPaginationPages = 1000
)

// API and context timeouts
const (
	// APIContextTimeout - default timeout for admin API operations (30 seconds)
	APIContextTimeout = 30 * time.Second

	// APIConnectionTestTimeout - timeout for the ping connectivity check (10 seconds)
	APIConnectionTestTimeout = 10 * time.Second

	// UploadOperationTimeout - cap on a single upload job (30 minutes)
	UploadOperationTimeout = 30 * time.Minute
)

// HTTP client tuning
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (60 seconds)
	HTTPTLSHandshakeTimeout = 60 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Retry configuration for the API client
const (
	// RetryMax - maximum number of retries for transient errors
	RetryMax = 5

	// RetryWaitMin - initial delay before first retry
	RetryWaitMin = 1 * time.Second

	// RetryWaitMax - maximum delay between retries
	RetryWaitMax = 30 * time.Second
)

// Event system
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios
	EventBusMaxBuffer = 5000
)

// Progress UI
const (
	// ProgressUpdateInterval - minimum interval between progress bar updates
	ProgressUpdateInterval = 250 * time.Millisecond
)
