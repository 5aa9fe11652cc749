// Package upload runs upload jobs against the platform's upload endpoint.
// Jobs are transient: queued, executed under a bounded-concurrency semaphore,
// reported over the event bus, and discarded on completion. Files upload
// independently; there is no cross-file ordering or atomicity.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medialens/medialens/internal/api"
	"github.com/medialens/medialens/internal/constants"
	"github.com/medialens/medialens/internal/http"
	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/logging"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/progress"
	"github.com/medialens/medialens/internal/util/sanitize"
	"github.com/medialens/medialens/internal/util/tags"
)

// Request describes one upload to perform. Exactly one of LocalPath or
// RemoteURL must be set.
type Request struct {
	LocalPath string // Path to a local file
	RemoteURL string // http(s) URL to relay through the upload endpoint

	Folder       string              // Destination folder, "" for the library root
	PublicID     string              // Custom public ID, "" lets the platform assign one
	Preset       string              // Unsigned upload preset name; "" means signed upload
	Tags         []string            // Tags to attach
	ResourceType models.ResourceType // Defaults to image when empty
}

// Job is a queued upload with an assigned ID. Transient; nothing about it is
// persisted.
type Job struct {
	ID   string
	Name string // Display name: file base name or the remote URL
	Size int64  // Total bytes, 0 when unknown (remote URL)

	Request
}

// Result pairs a finished job with its outcome.
type Result struct {
	Job   *Job
	Asset *models.UploadResult
	Err   error
}

// Coordinator executes upload jobs with bounded concurrency.
type Coordinator struct {
	client *api.Client
	bus    *events.EventBus
	logger *logging.Logger
	sem    chan struct{}

	// fetchClient retrieves remote-URL sources before relaying them. The
	// fetch happens before the multipart stream is consumed, so it can
	// safely retry; fetchRetry carries the backoff parameters.
	fetchClient *nethttp.Client
	fetchRetry  http.Config
}

// NewCoordinator creates an upload coordinator. maxConcurrent is clamped to
// the allowed range.
func NewCoordinator(client *api.Client, bus *events.EventBus, maxConcurrent int, logger *logging.Logger) *Coordinator {
	if maxConcurrent < constants.MinMaxConcurrent {
		maxConcurrent = constants.MinMaxConcurrent
	}
	if maxConcurrent > constants.MaxMaxConcurrent {
		maxConcurrent = constants.MaxMaxConcurrent
	}

	return &Coordinator{
		client:      client,
		bus:         bus,
		logger:      logger,
		sem:         make(chan struct{}, maxConcurrent),
		fetchClient: &nethttp.Client{Timeout: constants.UploadOperationTimeout},
		fetchRetry:  http.DefaultConfig(),
	}
}

// NewJob validates a request, assigns a job ID and announces it on the bus.
func (c *Coordinator) NewJob(req Request) (*Job, error) {
	if (req.LocalPath == "") == (req.RemoteURL == "") {
		return nil, fmt.Errorf("exactly one of a local path or a remote URL is required")
	}
	if req.ResourceType == "" {
		req.ResourceType = models.ResourceImage
	}
	if !req.ResourceType.Valid() {
		return nil, fmt.Errorf("unknown resource type %q", req.ResourceType)
	}

	job := &Job{
		ID:      uuid.NewString(),
		Request: req,
	}

	if req.LocalPath != "" {
		info, err := os.Stat(req.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", req.LocalPath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", req.LocalPath)
		}
		job.Name = filepath.Base(req.LocalPath)
		job.Size = info.Size()
	} else {
		u, err := url.Parse(req.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("remote source must be an http(s) URL: %s", req.RemoteURL)
		}
		job.Name = req.RemoteURL
	}

	if c.bus != nil {
		c.bus.Publish(&events.UploadEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventUploadQueued, Time: time.Now()},
			JobID:     job.ID,
			Name:      job.Name,
			Folder:    job.Folder,
			Bytes:     job.Size,
		})
	}

	return job, nil
}

// Run executes one job, blocking until a concurrency slot is free. Progress
// goes to the reporter; lifecycle events go to the bus. Cancellation is
// best-effort via ctx: an abandoned job stops at the next read.
func (c *Coordinator) Run(ctx context.Context, job *Job, reporter progress.Reporter) (*models.UploadResult, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	ctx, cancel := context.WithTimeout(ctx, constants.UploadOperationTimeout)
	defer cancel()

	if reporter == nil {
		reporter = progress.NewNoOpProgress()
	}

	result, err := c.run(ctx, job, reporter)
	if err != nil {
		reporter.Error(err)
		c.publishFailed(job, err)
		return nil, err
	}

	reporter.Finish()
	c.publishCompleted(job, result)
	return result, nil
}

func (c *Coordinator) run(ctx context.Context, job *Job, reporter progress.Reporter) (*models.UploadResult, error) {
	src, size, err := c.openSource(ctx, job)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if size > 0 {
		job.Size = size
	}

	reporter.Start(job.Size, job.Name)

	fields, err := c.buildFields(job)
	if err != nil {
		return nil, err
	}

	body, contentType := multipartStream(fields, job.Name, progress.NewProgressReader(src, job.Size, reporter))
	// Closing the pipe reader releases the writer goroutine when Upload
	// errors out before consuming the stream (rate limiter, bad request).
	defer body.Close()

	result, err := c.client.Upload(ctx, job.ResourceType, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", job.Name, err)
	}

	if c.logger != nil {
		c.logger.Info().
			Str("job_id", job.ID).
			Str("public_id", result.PublicID).
			Int64("bytes", result.Bytes).
			Msg("Upload complete")
	}
	return result, nil
}

// openSource returns the byte stream for the job's source. Remote sources
// are fetched and relayed; the size cap guards against unbounded relays.
func (c *Coordinator) openSource(ctx context.Context, job *Job) (io.ReadCloser, int64, error) {
	if job.LocalPath != "" {
		f, err := os.Open(job.LocalPath)
		if err != nil {
			return nil, 0, fmt.Errorf("cannot open %s: %w", job.LocalPath, err)
		}
		return f, job.Size, nil
	}

	cfg := c.fetchRetry
	cfg.OnRetry = func(attempt int, err error, _ http.ErrorType) {
		if c.logger != nil {
			c.logger.Warn().
				Str("job_id", job.ID).
				Int("attempt", attempt).
				Err(err).
				Msg("Retrying remote source fetch")
		}
		c.publishRetrying(job, attempt, err)
	}

	var resp *nethttp.Response
	err := http.ExecuteWithRetry(ctx, cfg, func() error {
		req, err := nethttp.NewRequestWithContext(ctx, "GET", job.RemoteURL, nil)
		if err != nil {
			return fmt.Errorf("invalid remote URL: %w", err)
		}

		r, err := c.fetchClient.Do(req)
		if err != nil {
			return fmt.Errorf("cannot fetch remote source: %w", err)
		}
		if r.StatusCode != nethttp.StatusOK {
			r.Body.Close()
			// No URL here: retry classification matches on the error text
			// and a port number would collide with the status-code checks.
			return fmt.Errorf("remote source fetch failed: status %d %s", r.StatusCode, nethttp.StatusText(r.StatusCode))
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if resp.ContentLength > constants.MaxRemoteURLBytes {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("remote source %s exceeds the %d byte limit", job.RemoteURL, int64(constants.MaxRemoteURLBytes))
	}

	size := resp.ContentLength
	if size < 0 {
		size = 0
	}

	// Servers may lie about (or omit) Content-Length; enforce the cap on the
	// stream as well.
	return &cappedReadCloser{r: io.LimitReader(resp.Body, constants.MaxRemoteURLBytes+1), c: resp.Body, limit: constants.MaxRemoteURLBytes}, size, nil
}

type cappedReadCloser struct {
	r     io.Reader
	c     io.Closer
	limit int64
	n     int64
}

func (cr *cappedReadCloser) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	if cr.n > cr.limit {
		return n, fmt.Errorf("remote source exceeds the %d byte limit", cr.limit)
	}
	return n, err
}

func (cr *cappedReadCloser) Close() error { return cr.c.Close() }

// buildFields assembles the upload form fields, signing them unless the job
// names an unsigned preset.
func (c *Coordinator) buildFields(job *Job) (map[string]string, error) {
	fields := map[string]string{
		"folder":    sanitize.FolderPath(job.Folder),
		"public_id": sanitize.PublicID(job.PublicID),
		"tags":      tags.Join(job.Tags),
	}

	if job.Preset != "" {
		// Unsigned upload: the preset carries the server-side policy.
		fields["upload_preset"] = job.Preset
		return fields, nil
	}

	fields["timestamp"] = fmt.Sprintf("%d", time.Now().Unix())
	fields["signature"] = c.client.SignUploadParams(fields)
	fields["api_key"] = c.client.APIKey()
	return fields, nil
}

// multipartStream builds a streaming multipart body: fields first, then the
// file part copied from src. The writer side runs in its own goroutine so
// the HTTP client can consume the pipe as it fills. The caller must close
// the returned reader; that unblocks the writer if the body was abandoned
// before being read.
func multipartStream(fields map[string]string, fileName string, src io.Reader) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, fields, fileName, src)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, fileName string, src io.Reader) error {
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to stream file: %w", err)
	}

	return mw.Close()
}

// RunAll executes jobs concurrently under the semaphore and returns results
// in job order. Each job gets its own event-bus progress reporter.
func (c *Coordinator) RunAll(ctx context.Context, jobs []*Job) []Result {
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job *Job) {
			defer wg.Done()
			var reporter progress.Reporter = progress.NewNoOpProgress()
			if c.bus != nil {
				reporter = progress.NewEventProgress(c.bus, job.ID, job.Name)
			}
			asset, err := c.Run(ctx, job, reporter)
			results[i] = Result{Job: job, Asset: asset, Err: err}
		}(i, job)
	}
	wg.Wait()

	return results
}

func (c *Coordinator) publishCompleted(job *Job, result *models.UploadResult) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadCompleted, Time: time.Now()},
		JobID:     job.ID,
		Name:      job.Name,
		Folder:    job.Folder,
		Bytes:     result.Bytes,
		Fraction:  1.0,
		PublicID:  result.PublicID,
		SecureURL: result.SecureURL,
	})
}

func (c *Coordinator) publishRetrying(job *Job, attempt int, err error) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadRetrying, Time: time.Now()},
		JobID:     job.ID,
		Name:      job.Name,
		Folder:    job.Folder,
		Retry:     attempt,
		Error:     err,
	})
}

func (c *Coordinator) publishFailed(job *Job, err error) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(&events.UploadEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventUploadFailed, Time: time.Now()},
		JobID:     job.ID,
		Name:      job.Name,
		Folder:    job.Folder,
		Bytes:     job.Size,
		Error:     err,
	})
}
