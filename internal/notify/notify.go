// Package notify provides cross-platform desktop notifications for upload
// outcomes and configuration problems.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger       *logging.Logger
	mu           sync.RWMutex
	enabled      bool
	showComplete bool
	showFailed   bool
}

// NewNotifier creates a notifier from the app's notification settings.
func NewNotifier(cfg config.NotificationSettings, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:       logger,
		enabled:      cfg.Enabled,
		showComplete: cfg.ShowUploadComplete,
		showFailed:   cfg.ShowUploadFailed,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// UploadComplete sends a notification for a successful upload.
func (n *Notifier) UploadComplete(name, publicID string) {
	if !n.IsEnabled() || !n.showComplete {
		return
	}

	title := "Upload Complete"
	message := fmt.Sprintf("%s uploaded as:\n%s", truncate(name, 40), truncate(publicID, 60))

	if err := n.send(title, message); err != nil {
		n.warn(err, "Failed to send upload complete notification")
	}
}

// UploadFailed sends a notification for a failed upload.
func (n *Notifier) UploadFailed(name, errorMsg string) {
	if !n.IsEnabled() || !n.showFailed {
		return
	}

	title := "Upload Failed"
	message := fmt.Sprintf("%s failed:\n%s", truncate(name, 40), truncate(errorMsg, 100))

	if err := n.send(title, message); err != nil {
		n.warn(err, "Failed to send upload failed notification")
	}
}

// BatchComplete sends a summary notification for a finished upload batch.
func (n *Notifier) BatchComplete(succeeded, failed int) {
	if !n.IsEnabled() || !n.showComplete {
		return
	}

	title := "MediaLens"
	message := fmt.Sprintf("Upload batch finished: %d succeeded, %d failed.", succeeded, failed)

	if err := n.send(title, message); err != nil {
		n.warn(err, "Failed to send batch notification")
	}
}

// ConfigProblem sends an alert for a configuration issue that blocks API
// access (missing credentials, malformed file).
func (n *Notifier) ConfigProblem(message string) {
	if !n.IsEnabled() {
		return
	}

	title := "MediaLens Configuration"

	// Use beeep.Alert which shows a more prominent notification on some platforms
	if err := beeep.Alert(title, message, ""); err != nil {
		// Fall back to regular notify
		if err := n.send(title, message); err != nil {
			n.warn(err, "Failed to send configuration alert")
		}
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return beeep.Notify(title, message, "")
}

func (n *Notifier) warn(err error, msg string) {
	if n.logger != nil {
		n.logger.Warn().Err(err).Msg(msg)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
