// Package progress provides a unified interface for progress reporting
// across CLI (progress bars) and panel (event bus) modes.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/medialens/medialens/internal/constants"
	"github.com/medialens/medialens/internal/events"
)

// Reporter is the interface for reporting progress in both CLI and panel modes.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress implements progress reporting for CLI mode using progress bars.
type CLIProgress struct {
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a new CLI progress reporter.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{}
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(constants.ProgressUpdateInterval),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// EventProgress implements progress reporting for panel mode via the event
// bus. Published fractions are monotonically non-decreasing and capped at
// 1.0, regardless of what the underlying byte counter does.
type EventProgress struct {
	eventBus *events.EventBus
	jobID    string
	name     string
	total    int64
	fraction float64
}

// NewEventProgress creates a new event bus progress reporter for one job.
func NewEventProgress(eventBus *events.EventBus, jobID, name string) *EventProgress {
	return &EventProgress{
		eventBus: eventBus,
		jobID:    jobID,
		name:     name,
	}
}

// Start initializes progress tracking and announces the job.
func (p *EventProgress) Start(total int64, description string) {
	p.total = total
	p.fraction = 0
	p.eventBus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadStarted, Time: time.Now()},
		JobID:     p.jobID,
		Name:      p.name,
		Bytes:     total,
		Fraction:  0,
	})
}

// Update publishes a progress update. Regressions are clamped so
// subscribers always observe a non-decreasing fraction.
func (p *EventProgress) Update(current int64) {
	fraction := p.fraction
	if p.total > 0 {
		fraction = float64(current) / float64(p.total)
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	if fraction < p.fraction {
		fraction = p.fraction
	}
	p.fraction = fraction

	p.eventBus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadProgress, Time: time.Now()},
		JobID:     p.jobID,
		Name:      p.name,
		Bytes:     p.total,
		Fraction:  fraction,
	})
}

// Finish publishes the terminal 1.0 fraction.
func (p *EventProgress) Finish() {
	p.fraction = 1.0
	p.eventBus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadProgress, Time: time.Now()},
		JobID:     p.jobID,
		Name:      p.name,
		Bytes:     p.total,
		Fraction:  1.0,
	})
}

// Error publishes an error event for the job.
func (p *EventProgress) Error(err error) {
	if err != nil {
		p.eventBus.Publish(&events.ErrorEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventError, Time: time.Now()},
			Source:    "upload",
			Error:     err,
		})
	}
}

// SetDescription is a no-op; panel rows are labeled by job name.
func (p *EventProgress) SetDescription(desc string) {}

// NoOpProgress is a progress reporter that does nothing (for background/silent operations).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

// Start does nothing.
func (p *NoOpProgress) Start(total int64, description string) {}

// Update does nothing.
func (p *NoOpProgress) Update(current int64) {}

// Finish does nothing.
func (p *NoOpProgress) Finish() {}

// Error does nothing.
func (p *NoOpProgress) Error(err error) {}

// SetDescription does nothing.
func (p *NoOpProgress) SetDescription(desc string) {}

// ProgressReader wraps an io.Reader to report progress.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	total    int64
	current  int64
}

// NewProgressReader creates a new progress-reporting reader.
func NewProgressReader(reader io.Reader, total int64, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		reporter: reporter,
		total:    total,
		current:  0,
	}
}

// Read implements io.Reader interface with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.reporter.Update(pr.current)
	return n, err
}
