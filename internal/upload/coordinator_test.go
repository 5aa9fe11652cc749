package upload

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medialens/medialens/internal/api"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/progress"
)

// uploadRecord captures what the fake upload endpoint received.
type uploadRecord struct {
	Fields   map[string]string
	FileName string
	FileData []byte
}

func testCoordinator(t *testing.T, handler nethttp.HandlerFunc) (*Coordinator, *events.EventBus) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings := config.NewSettings()
	settings.APIBaseURL = server.URL

	env := config.Environment{
		CloudName: "test-cloud",
		APIKey:    "test-key",
		APISecret: "test-secret",
	}

	client, err := api.NewClient(env, settings)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	return NewCoordinator(client, bus, 2, nil), bus
}

// uploadHandler parses the multipart request and replies with a canned result.
func uploadHandler(t *testing.T, record *uploadRecord, status int, result models.UploadResult) nethttp.HandlerFunc {
	t.Helper()

	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("bad multipart request: %v", err)
			w.WriteHeader(nethttp.StatusBadRequest)
			return
		}

		record.Fields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			record.Fields[key] = values[0]
		}

		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			record.FileName = files[0].Filename
			f, err := files[0].Open()
			if err == nil {
				buf := make([]byte, files[0].Size)
				n, _ := f.Read(buf)
				record.FileData = buf[:n]
				f.Close()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if status != nethttp.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"message":"upload rejected"}}`)
			return
		}
		json.NewEncoder(w).Encode(result)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestNewJob_Validation(t *testing.T) {
	coord, _ := testCoordinator(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {})

	if _, err := coord.NewJob(Request{}); err == nil {
		t.Error("expected error with no source")
	}
	if _, err := coord.NewJob(Request{LocalPath: "/a", RemoteURL: "https://x"}); err == nil {
		t.Error("expected error with both sources")
	}
	if _, err := coord.NewJob(Request{RemoteURL: "ftp://example.test/a"}); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := coord.NewJob(Request{LocalPath: t.TempDir()}); err == nil {
		t.Error("expected error for directory source")
	}
	if _, err := coord.NewJob(Request{LocalPath: filepath.Join(t.TempDir(), "missing.png")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRun_LocalFileSigned(t *testing.T) {
	record := &uploadRecord{}
	result := models.UploadResult{
		PublicID:  "products/photo",
		Bytes:     11,
		SecureURL: "https://cdn.test/products/photo.png",
	}

	coord, bus := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, result))
	ch := bus.SubscribeAll()

	path := writeTempFile(t, "photo.png", "hello bytes")
	job, err := coord.NewJob(Request{
		LocalPath: path,
		Folder:    "products",
		Tags:      []string{"hero", "web"},
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == "" {
		t.Error("job has no ID")
	}
	if job.Name != "photo.png" {
		t.Errorf("job name = %q, want photo.png", job.Name)
	}
	if job.Size != 11 {
		t.Errorf("job size = %d, want 11", job.Size)
	}

	got, err := coord.Run(context.Background(), job, progress.NewEventProgress(bus, job.ID, job.Name))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.PublicID != "products/photo" {
		t.Errorf("public ID = %q, want products/photo", got.PublicID)
	}

	// Signed upload carries key, timestamp and signature
	for _, field := range []string{"api_key", "timestamp", "signature"} {
		if record.Fields[field] == "" {
			t.Errorf("missing %s field in signed upload", field)
		}
	}
	if record.Fields["folder"] != "products" {
		t.Errorf("folder field = %q, want products", record.Fields["folder"])
	}
	if record.Fields["tags"] != "hero,web" {
		t.Errorf("tags field = %q, want hero,web", record.Fields["tags"])
	}
	if string(record.FileData) != "hello bytes" {
		t.Errorf("file data = %q, want hello bytes", record.FileData)
	}

	// Lifecycle events: queued, started, progress updates, completed
	var types []events.EventType
	var completed *events.UploadEvent
	for done := false; !done; {
		select {
		case evt := <-ch:
			up, ok := evt.(*events.UploadEvent)
			if !ok {
				continue
			}
			types = append(types, up.Type())
			if up.Type() == events.EventUploadCompleted {
				completed = up
				done = true
			}
		default:
			done = true
		}
	}
	if len(types) == 0 || types[0] != events.EventUploadQueued {
		t.Errorf("first event = %v, want %v", types, events.EventUploadQueued)
	}
	if completed == nil {
		t.Fatal("no completed event published")
	}
	if completed.PublicID != "products/photo" || completed.Fraction != 1.0 {
		t.Errorf("completed event = %+v", completed)
	}
}

func TestRun_UnsignedPreset(t *testing.T) {
	record := &uploadRecord{}
	coord, _ := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, models.UploadResult{PublicID: "x"}))

	path := writeTempFile(t, "a.png", "data")
	job, err := coord.NewJob(Request{LocalPath: path, Preset: "unsigned-web"})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	if _, err := coord.Run(context.Background(), job, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if record.Fields["upload_preset"] != "unsigned-web" {
		t.Errorf("upload_preset = %q, want unsigned-web", record.Fields["upload_preset"])
	}
	if record.Fields["signature"] != "" || record.Fields["api_key"] != "" {
		t.Error("unsigned upload must not carry signature or api_key fields")
	}
}

func TestRun_RemoteURL(t *testing.T) {
	source := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("remote image bytes"))
	}))
	defer source.Close()

	record := &uploadRecord{}
	coord, _ := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, models.UploadResult{PublicID: "r"}))

	job, err := coord.NewJob(Request{RemoteURL: source.URL + "/img.jpg"})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.Size != 0 {
		t.Errorf("remote job size = %d before fetch, want 0", job.Size)
	}

	if _, err := coord.Run(context.Background(), job, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if string(record.FileData) != "remote image bytes" {
		t.Errorf("relayed data = %q", record.FileData)
	}
}

func TestRun_RemoteURLRetriesTransientFetchErrors(t *testing.T) {
	var fetches atomic.Int32
	source := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if fetches.Add(1) <= 2 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("eventually available bytes"))
	}))
	defer source.Close()

	record := &uploadRecord{}
	coord, bus := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, models.UploadResult{PublicID: "r"}))
	coord.fetchRetry.InitialDelay = time.Millisecond
	coord.fetchRetry.MaxDelay = 5 * time.Millisecond

	ch := bus.Subscribe(events.EventUploadRetrying)

	job, err := coord.NewJob(Request{RemoteURL: source.URL + "/img.jpg"})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	if _, err := coord.Run(context.Background(), job, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := fetches.Load(); got != 3 {
		t.Errorf("source fetched %d times, want 3", got)
	}
	if string(record.FileData) != "eventually available bytes" {
		t.Errorf("relayed data = %q", record.FileData)
	}

	retries := 0
	for done := false; !done; {
		select {
		case evt := <-ch:
			up := evt.(*events.UploadEvent)
			if up.JobID != job.ID || up.Retry == 0 || up.Error == nil {
				t.Errorf("retry event = %+v", up)
			}
			retries++
		default:
			done = true
		}
	}
	if retries != 2 {
		t.Errorf("got %d retry events, want 2", retries)
	}
}

func TestRun_RemoteURLFatalStatusNotRetried(t *testing.T) {
	var fetches atomic.Int32
	source := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fetches.Add(1)
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer source.Close()

	coord, _ := testCoordinator(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {})
	coord.fetchRetry.InitialDelay = time.Millisecond

	job, err := coord.NewJob(Request{RemoteURL: source.URL + "/missing.jpg"})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	if _, err := coord.Run(context.Background(), job, nil); err == nil {
		t.Fatal("expected error for missing remote source")
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("source fetched %d times, want 1 (404 is not retryable)", got)
	}
}

func TestMultipartStreamCloseReleasesWriter(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		body, contentType := multipartStream(map[string]string{"folder": "products"}, "a.png", strings.NewReader("data"))
		if contentType == "" {
			t.Fatal("missing content type")
		}
		// Abandon the stream without reading it, as Upload does when the
		// request fails before the body is consumed
		body.Close()
	}

	deadline := time.After(2 * time.Second)
	for runtime.NumGoroutine() > before {
		select {
		case <-deadline:
			t.Fatalf("multipart writer goroutines still running: %d, started with %d",
				runtime.NumGoroutine(), before)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRun_ValidationError(t *testing.T) {
	record := &uploadRecord{}
	coord, bus := testCoordinator(t, uploadHandler(t, record, nethttp.StatusBadRequest, models.UploadResult{}))
	ch := bus.Subscribe(events.EventUploadFailed)

	path := writeTempFile(t, "bad.png", "data")
	job, err := coord.NewJob(Request{LocalPath: path})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	_, err = coord.Run(context.Background(), job, nil)
	if err == nil {
		t.Fatal("expected error from rejected upload")
	}
	if !api.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	select {
	case evt := <-ch:
		up := evt.(*events.UploadEvent)
		if up.JobID != job.ID || up.Error == nil {
			t.Errorf("failed event = %+v", up)
		}
	default:
		t.Error("no failed event published")
	}
}

func TestRunAll(t *testing.T) {
	record := &uploadRecord{}
	coord, _ := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, models.UploadResult{PublicID: "multi"}))

	var jobs []*Job
	for i := 0; i < 4; i++ {
		path := writeTempFile(t, fmt.Sprintf("f%d.png", i), "data")
		job, err := coord.NewJob(Request{LocalPath: path})
		if err != nil {
			t.Fatalf("NewJob failed: %v", err)
		}
		jobs = append(jobs, job)
	}

	results := coord.RunAll(context.Background(), jobs)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, res := range results {
		if res.Job != jobs[i] {
			t.Errorf("result %d out of order", i)
		}
		if res.Err != nil {
			t.Errorf("job %d failed: %v", i, res.Err)
		}
		if res.Asset == nil || res.Asset.PublicID != "multi" {
			t.Errorf("job %d missing asset", i)
		}
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	record := &uploadRecord{}
	coord, _ := testCoordinator(t, uploadHandler(t, record, nethttp.StatusOK, models.UploadResult{}))

	path := writeTempFile(t, "c.png", "data")
	job, err := coord.NewJob(Request{LocalPath: path})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := coord.Run(ctx, job, nil); err == nil {
		t.Error("expected error from cancelled context")
	}
}
