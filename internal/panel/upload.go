package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/upload"
)

// Session is the upload panel's transient state: queued sources and the
// destination settings, accumulated from inbound messages until a start
// message runs them. Closing the panel drops the session; in-flight jobs are
// abandoned via the context.
type Session struct {
	mu      sync.Mutex
	coord   *upload.Coordinator
	bus     *events.EventBus
	folder  string
	preset  string
	pending []upload.Request
}

// NewSession creates an upload panel session. defaultFolder seeds the
// destination until a setDestination message changes it.
func NewSession(coord *upload.Coordinator, bus *events.EventBus, defaultFolder string) *Session {
	return &Session{
		coord:  coord,
		bus:    bus,
		folder: defaultFolder,
	}
}

// Pending returns the number of queued sources.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Destination returns the current folder and preset.
func (s *Session) Destination() (folder, preset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder, s.preset
}

// HandleMessage dispatches one inbound upload panel message. A start message
// runs the queued jobs synchronously; surfaces dispatch on their own
// goroutine.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) error {
	env, err := Decode(raw)
	if err != nil {
		return err
	}

	switch env.Type {
	case MsgAddFiles:
		var msg AddFilesMessage
		if err := env.Into(&msg); err != nil {
			return err
		}
		s.addFiles(msg.Paths)
		return nil

	case MsgAddRemoteURL:
		var msg AddRemoteURLMessage
		if err := env.Into(&msg); err != nil {
			return err
		}
		if msg.URL == "" {
			return fmt.Errorf("remote URL must not be empty")
		}
		s.addRemoteURL(msg.URL)
		return nil

	case MsgSetDestination:
		var msg SetDestinationMessage
		if err := env.Into(&msg); err != nil {
			return err
		}
		s.mu.Lock()
		s.folder = msg.Folder
		s.preset = msg.Preset
		s.mu.Unlock()
		return nil

	case MsgStartUpload:
		_, err := s.Start(ctx)
		return err

	default:
		return fmt.Errorf("unexpected upload panel message type %q", env.Type)
	}
}

func (s *Session) addFiles(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range paths {
		if path == "" {
			continue
		}
		s.pending = append(s.pending, upload.Request{LocalPath: path})
	}
}

func (s *Session) addRemoteURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, upload.Request{RemoteURL: url})
}

// Start drains the queue and runs the jobs under the coordinator, applying
// the session's destination to every request. Sources that fail validation
// surface as jobFailed messages without blocking the rest.
func (s *Session) Start(ctx context.Context) ([]upload.Result, error) {
	s.mu.Lock()
	requests := s.pending
	s.pending = nil
	folder, preset := s.folder, s.preset
	s.mu.Unlock()

	if len(requests) == 0 {
		return nil, fmt.Errorf("nothing queued to upload")
	}

	var jobs []*upload.Job
	var results []upload.Result
	for _, req := range requests {
		req.Folder = folder
		req.Preset = preset

		job, err := s.coord.NewJob(req)
		if err != nil {
			name := req.LocalPath
			if name == "" {
				name = req.RemoteURL
			}
			results = append(results, upload.Result{Err: err})
			s.post(MsgJobFailed, JobFailedMessage{Name: name, Error: err.Error()})
			continue
		}
		jobs = append(jobs, job)
	}

	results = append(results, s.coord.RunAll(ctx, jobs)...)
	return results, nil
}

// PumpEvents translates upload lifecycle events from the bus into outbound
// panel messages until ctx is cancelled or the bus closes. Run it on its own
// goroutine while the panel is open.
func (s *Session) PumpEvents(ctx context.Context) {
	ch := s.bus.SubscribeAll()
	defer s.bus.UnsubscribeAll(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			up, isUpload := evt.(*events.UploadEvent)
			if !isUpload {
				continue
			}
			if out, ok := TranslateUploadEvent(up); ok {
				s.post(out.Type, out.Data)
			}
		}
	}
}

// TranslateUploadEvent maps an upload lifecycle event to its outbound panel
// message. Returns false for event types the panel does not render.
func TranslateUploadEvent(evt *events.UploadEvent) (Outbound, bool) {
	switch evt.Type() {
	case events.EventUploadQueued:
		return Outbound{Type: MsgJobQueued, Data: JobProgressMessage{
			JobID: evt.JobID, Name: evt.Name, Bytes: evt.Bytes,
		}}, true
	case events.EventUploadStarted, events.EventUploadProgress:
		return Outbound{Type: MsgJobProgress, Data: JobProgressMessage{
			JobID: evt.JobID, Name: evt.Name, Fraction: evt.Fraction, Bytes: evt.Bytes,
		}}, true
	case events.EventUploadCompleted:
		return Outbound{Type: MsgJobDone, Data: JobDoneMessage{
			JobID: evt.JobID, Name: evt.Name, PublicID: evt.PublicID, SecureURL: evt.SecureURL,
		}}, true
	case events.EventUploadFailed:
		msg := JobFailedMessage{JobID: evt.JobID, Name: evt.Name}
		if evt.Error != nil {
			msg.Error = evt.Error.Error()
		}
		return Outbound{Type: MsgJobFailed, Data: msg}, true
	}
	return Outbound{}, false
}

func (s *Session) post(msgType MessageType, data interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.PanelMessageEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventPanelMessage, Time: time.Now()},
		Panel:     "upload",
		Payload:   Outbound{Type: msgType, Data: data},
	})
}
