// Package panel implements the host side of the webview-style panels: the
// JSON message protocol, preview panel state and the upload panel session.
// Inbound messages arrive from a panel surface (CLI prompt, future editor
// webview); outbound messages go out as PanelMessageEvent on the event bus.
package panel

import (
	"encoding/json"
	"fmt"

	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/transform"
)

// MessageType identifies a panel message.
type MessageType string

const (
	// Upload panel, inbound (surface -> host)
	MsgAddFiles       MessageType = "addFiles"
	MsgAddRemoteURL   MessageType = "addRemoteUrl"
	MsgSetDestination MessageType = "setDestination"
	MsgStartUpload    MessageType = "startUpload"

	// Upload panel, outbound (host -> surface)
	MsgJobQueued   MessageType = "jobQueued"
	MsgJobProgress MessageType = "jobProgress"
	MsgJobDone     MessageType = "jobDone"
	MsgJobFailed   MessageType = "jobFailed"

	// Preview panel, inbound
	MsgCopyURL        MessageType = "copyUrl"
	MsgOpenInBrowser  MessageType = "openInBrowser"
	MsgToggleLightbox MessageType = "toggleLightbox"
	MsgDeleteAsset    MessageType = "deleteAsset"

	// Preview panel, outbound
	MsgShowAsset    MessageType = "showAsset"
	MsgAssetDeleted MessageType = "assetDeleted"

	// Welcome panel, outbound
	MsgWelcome MessageType = "welcome"
)

// Envelope is the wire form of every panel message.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw inbound message.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed panel message: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("panel message has no type")
	}
	return &env, nil
}

// Into unmarshals the envelope's data into a payload struct.
func (e *Envelope) Into(v interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("malformed %s payload: %w", e.Type, err)
	}
	return nil
}

// Encode marshals an outbound message for a panel surface.
func Encode(msgType MessageType, data interface{}) ([]byte, error) {
	env := Envelope{Type: msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %s payload: %w", msgType, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// Outbound pairs a message type with its payload for publication on the
// event bus; surfaces serialize it with Encode when they forward it.
type Outbound struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Inbound payloads.

// AddFilesMessage queues local files in the upload panel.
type AddFilesMessage struct {
	Paths []string `json:"paths"`
}

// AddRemoteURLMessage queues a remote URL source in the upload panel.
type AddRemoteURLMessage struct {
	URL string `json:"url"`
}

// SetDestinationMessage sets the destination folder and optional unsigned
// preset for the upload panel session.
type SetDestinationMessage struct {
	Folder string `json:"folder"`
	Preset string `json:"preset,omitempty"`
}

// CopyURLMessage asks the host to copy one of the preview URLs.
// Variant is "original", "thumbnail" or "lightbox"; empty means original.
type CopyURLMessage struct {
	Variant string `json:"variant,omitempty"`
}

// OpenInBrowserMessage asks the host to open a preview URL in the browser.
type OpenInBrowserMessage struct {
	Variant string `json:"variant,omitempty"`
}

// Outbound payloads.

// JobProgressMessage reports fractional progress for one upload job.
type JobProgressMessage struct {
	JobID    string  `json:"jobId"`
	Name     string  `json:"name"`
	Fraction float64 `json:"fraction"`
	Bytes    int64   `json:"bytes,omitempty"`
}

// JobDoneMessage reports a finished upload job.
type JobDoneMessage struct {
	JobID     string `json:"jobId"`
	Name      string `json:"name"`
	PublicID  string `json:"publicId"`
	SecureURL string `json:"secureUrl,omitempty"`
}

// JobFailedMessage reports a terminally failed upload job.
type JobFailedMessage struct {
	JobID string `json:"jobId"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ShowAssetMessage carries the preview panel's full render state.
type ShowAssetMessage struct {
	Asset    models.Asset         `json:"asset"`
	URLs     transform.PreviewSet `json:"urls"`
	Lightbox bool                 `json:"lightbox"`
}

// AssetDeletedMessage tells the preview surface its asset is gone.
type AssetDeletedMessage struct {
	PublicID string `json:"publicId"`
}

// WelcomeMessage points a first-run user at the placeholder credentials.
type WelcomeMessage struct {
	CredentialsPath string `json:"credentialsPath"`
	Reason          string `json:"reason"`
}
