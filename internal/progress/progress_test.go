package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/medialens/medialens/internal/events"
)

// drainUploadEvents collects the fractions published for upload events.
func drainUploadEvents(ch <-chan events.Event) []float64 {
	var fractions []float64
	for {
		select {
		case evt := <-ch:
			if up, ok := evt.(*events.UploadEvent); ok {
				fractions = append(fractions, up.Fraction)
			}
		default:
			return fractions
		}
	}
}

func TestEventProgress_MonotonicFractions(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	ch := bus.SubscribeAll()

	p := NewEventProgress(bus, "job-1", "photo.png")
	p.Start(100, "photo.png")

	// Updates including a regression and an overshoot
	for _, current := range []int64{10, 50, 40, 80, 120} {
		p.Update(current)
	}
	p.Finish()

	fractions := drainUploadEvents(ch)
	if len(fractions) == 0 {
		t.Fatal("no upload events published")
	}

	last := -1.0
	for i, f := range fractions {
		if f < last {
			t.Errorf("fraction regressed at %d: %.2f -> %.2f", i, last, f)
		}
		if f > 1.0 {
			t.Errorf("fraction %d exceeds 1.0: %.2f", i, f)
		}
		last = f
	}
	if last != 1.0 {
		t.Errorf("final fraction = %.2f, want 1.0", last)
	}
}

func TestEventProgress_UnknownTotal(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	ch := bus.SubscribeAll()

	// Remote URL source: size unknown
	p := NewEventProgress(bus, "job-2", "https://example.test/a.jpg")
	p.Start(0, "remote")
	p.Update(4096)
	p.Finish()

	fractions := drainUploadEvents(ch)
	for i, f := range fractions {
		if f < 0 || f > 1.0 {
			t.Errorf("fraction %d out of range: %.2f", i, f)
		}
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Error("Finish must publish 1.0 even with unknown total")
	}
}

func TestProgressReader(t *testing.T) {
	src := strings.NewReader("hello progress reader")
	total := int64(src.Len())

	recorder := &recordingReporter{}
	pr := NewProgressReader(src, total, recorder)

	var out bytes.Buffer
	n, err := io.Copy(&out, pr)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if n != total {
		t.Errorf("copied %d bytes, want %d", n, total)
	}

	if len(recorder.updates) == 0 {
		t.Fatal("reporter never updated")
	}
	if final := recorder.updates[len(recorder.updates)-1]; final != total {
		t.Errorf("final update = %d, want %d", final, total)
	}
}

type recordingReporter struct {
	updates []int64
}

func (r *recordingReporter) Start(total int64, description string) {}
func (r *recordingReporter) Update(current int64)                  { r.updates = append(r.updates, current) }
func (r *recordingReporter) Finish()                               {}
func (r *recordingReporter) Error(err error)                       {}
func (r *recordingReporter) SetDescription(desc string)            {}
