package models

import "time"

// ResourceType is the platform's asset classification.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
	ResourceRaw   ResourceType = "raw"
)

// Valid reports whether t is one of the platform's resource types.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceImage, ResourceVideo, ResourceRaw:
		return true
	}
	return false
}

// Asset represents a single media asset in the library.
// Reconstructed from API responses on demand, never persisted.
type Asset struct {
	PublicID     string       `json:"public_id"`
	ResourceType ResourceType `json:"resource_type"`
	Format       string       `json:"format,omitempty"`
	Folder       string       `json:"folder,omitempty"`
	Bytes        int64        `json:"bytes,omitempty"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
	Duration     float64      `json:"duration,omitempty"` // video only, seconds
	Tags         []string     `json:"tags,omitempty"`
	URL          string       `json:"url,omitempty"`
	SecureURL    string       `json:"secure_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at,omitempty"`
	Version      int64        `json:"version,omitempty"`
}

// DisplayName returns the last path segment of the public ID, which is what
// the library UI shows for an asset inside a folder.
func (a *Asset) DisplayName() string {
	for i := len(a.PublicID) - 1; i >= 0; i-- {
		if a.PublicID[i] == '/' {
			return a.PublicID[i+1:]
		}
	}
	return a.PublicID
}

// Folder represents one folder in the library's virtual hierarchy.
type Folder struct {
	Name string `json:"name"` // Last path segment
	Path string `json:"path"` // Full path from the root
}

// AssetListResponse is the response from the resource list and search
// endpoints. NextCursor is empty on the last page.
type AssetListResponse struct {
	Assets     []Asset `json:"resources"`
	NextCursor string  `json:"next_cursor,omitempty"`
	TotalCount int     `json:"total_count,omitempty"`
}

// FolderListResponse is the response from the folder list endpoints.
type FolderListResponse struct {
	Folders    []Folder `json:"folders"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// UploadResult is the finished asset record returned by the upload endpoint.
type UploadResult struct {
	PublicID     string       `json:"public_id"`
	ResourceType ResourceType `json:"resource_type"`
	Format       string       `json:"format,omitempty"`
	Bytes        int64        `json:"bytes"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	URL          string       `json:"url,omitempty"`
	SecureURL    string       `json:"secure_url,omitempty"`
	Version      int64        `json:"version,omitempty"`
	CreatedAt    time.Time    `json:"created_at,omitempty"`
}

// Usage is the account usage/quota report.
type Usage struct {
	Plan           string  `json:"plan,omitempty"`
	CreditsUsed    float64 `json:"credits_used,omitempty"`
	CreditsLimit   float64 `json:"credits_limit,omitempty"`
	StorageBytes   int64   `json:"storage_bytes,omitempty"`
	BandwidthBytes int64   `json:"bandwidth_bytes,omitempty"`
	ResourceCount  int64   `json:"resource_count,omitempty"`
	TransformCount int64   `json:"transform_count,omitempty"`
}

// APIErrorBody is the error envelope the platform returns on non-2xx.
type APIErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
