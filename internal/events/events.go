// Package events provides the typed pub/sub bus that connects the tree
// provider, upload coordinator and panels without direct coupling. Panels
// receive host-side state changes through it; the tree provider uses it to
// learn about environment switches.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/medialens/medialens/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog   EventType = "log"
	EventError EventType = "error"

	// Environment lifecycle
	EventEnvironmentChanged EventType = "environment_changed" // Active credentials swapped; caches must invalidate

	// Upload job lifecycle
	EventUploadQueued    EventType = "upload_queued"    // Job added to the panel session
	EventUploadStarted   EventType = "upload_started"   // Bytes moving
	EventUploadProgress  EventType = "upload_progress"  // Fractional progress update
	EventUploadRetrying  EventType = "upload_retrying"  // Remote source fetch being retried
	EventUploadCompleted EventType = "upload_completed" // Finished asset record available
	EventUploadFailed    EventType = "upload_failed"    // Terminal typed error

	// Panel messaging
	EventPanelMessage EventType = "panel_message" // Outbound message for a panel
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Error   error
}

// ErrorEvent represents error conditions surfaced to the user
type ErrorEvent struct {
	BaseEvent
	Source string // "config", "api", "upload"
	Error  error
}

// EnvironmentChangedEvent is published when the active environment switches.
// Subscribers (tree provider, panels, status indicator) should drop any
// per-environment cached state.
type EnvironmentChangedEvent struct {
	BaseEvent
	OldName string // Previous environment name, empty on first activation
	NewName string // Newly active environment name
}

// UploadEvent represents upload job lifecycle events
type UploadEvent struct {
	BaseEvent
	JobID     string  // Upload job ID
	Name      string  // Display name (file name or remote URL)
	Folder    string  // Destination folder path
	Bytes     int64   // Total size in bytes, 0 when unknown (remote URL)
	Fraction  float64 // 0.0 to 1.0
	Retry     int     // Retry attempt number, set on retrying events
	PublicID  string  // Assigned public ID, set on completion
	SecureURL string  // Delivery URL, set on completion
	Error     error   // Error if failed
}

// PanelMessageEvent carries an outbound message destined for a panel.
// Payload is a JSON-marshalable message struct from the panel package.
type PanelMessageEvent struct {
	BaseEvent
	Panel   string // "preview", "upload", "welcome"
	Payload interface{}
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers (non-blocking; full buffers drop)
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		Level:   level,
		Message: message,
		Error:   err,
	})
}

// PublishEnvironmentChanged is a convenience method for environment switches
func (eb *EventBus) PublishEnvironmentChanged(oldName, newName string) {
	eb.Publish(&EnvironmentChangedEvent{
		BaseEvent: BaseEvent{
			EventType: EventEnvironmentChanged,
			Time:      time.Now(),
		},
		OldName: oldName,
		NewName: newName,
	})
}

// PublishUpload is a convenience method for upload lifecycle events
func (eb *EventBus) PublishUpload(eventType EventType, jobID, name string, fraction float64, err error) {
	eb.Publish(&UploadEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Time:      time.Now(),
		},
		JobID:    jobID,
		Name:     name,
		Fraction: fraction,
		Error:    err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
