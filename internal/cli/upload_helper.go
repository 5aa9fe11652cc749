package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/medialens/medialens/internal/events"
	"github.com/medialens/medialens/internal/progress"
	"github.com/medialens/medialens/internal/upload"
)

// expandGlobPatterns expands glob patterns like *.png, even when quoted.
// Returns a deduplicated list of absolute file paths.
func expandGlobPatterns(patterns []string) ([]string, error) {
	var expandedFiles []string
	seenFiles := make(map[string]bool)

	for _, pattern := range patterns {
		hasGlob := strings.ContainsAny(pattern, "*?[]")

		if hasGlob {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match pattern: %s", pattern)
			}

			for _, match := range matches {
				absPath, err := filepath.Abs(match)
				if err != nil {
					return nil, fmt.Errorf("failed to get absolute path for %s: %w", match, err)
				}
				if !seenFiles[absPath] {
					expandedFiles = append(expandedFiles, absPath)
					seenFiles[absPath] = true
				}
			}
		} else {
			absPath, err := filepath.Abs(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to get absolute path for %s: %w", pattern, err)
			}
			if !seenFiles[absPath] {
				expandedFiles = append(expandedFiles, absPath)
				seenFiles[absPath] = true
			}
		}
	}

	return expandedFiles, nil
}

// runUploadBatch runs the requests under the coordinator with the multi-bar
// UI, then prints a summary and fires desktop notifications.
func runUploadBatch(a *app, coord *upload.Coordinator, requests []upload.Request) error {
	// Validate every source before opening the UI so early errors print
	// normally.
	var jobs []*upload.Job
	for _, req := range requests {
		job, err := coord.NewJob(req)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	// A lone file gets the simple single-op bar; the multi-bar layout is
	// for batches.
	if len(jobs) == 1 {
		return runUploadSingle(a, coord, jobs[0])
	}

	ui := progress.NewUploadUI(len(jobs))

	// Route log lines above the bars instead of tearing them
	GetLogger().SetOutput(ui.Writer())

	bars := make(map[string]progress.FileBarHandle, len(jobs))
	for _, job := range jobs {
		bars[job.ID] = ui.AddFileBar(job.Name, job.Folder, job.Size)
	}

	// Drive the bars from the event bus while the batch runs
	pumpCtx, stopPump := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		ch := a.bus.SubscribeAll()
		defer a.bus.UnsubscribeAll(ch)
		for {
			select {
			case <-pumpCtx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				up, isUpload := evt.(*events.UploadEvent)
				if !isUpload {
					continue
				}
				bar, ok := bars[up.JobID]
				if !ok {
					continue
				}
				switch up.Type() {
				case events.EventUploadProgress:
					bar.UpdateProgress(up.Fraction)
				case events.EventUploadRetrying:
					bar.SetRetry(up.Retry)
				}
			}
		}
	}()

	results := coord.RunAll(GetContext(), jobs)

	stopPump()
	<-pumpDone

	succeeded, failed := 0, 0
	for _, res := range results {
		bar := bars[res.Job.ID]
		if res.Err != nil {
			failed++
			bar.Complete("", res.Err)
			a.notifier.UploadFailed(res.Job.Name, res.Err.Error())
			continue
		}
		succeeded++
		bar.Complete(res.Asset.PublicID, nil)
		a.notifier.UploadComplete(res.Job.Name, res.Asset.PublicID)
	}

	ui.Wait()

	if len(results) > 1 {
		a.notifier.BatchComplete(succeeded, failed)
	}

	fmt.Printf("\nUploaded %d of %d file(s)\n", succeeded, len(results))
	if failed > 0 {
		return fmt.Errorf("%d upload(s) failed", failed)
	}
	return nil
}

// runUploadSingle runs one job with the single-operation progress bar.
func runUploadSingle(a *app, coord *upload.Coordinator, job *upload.Job) error {
	result, err := coord.Run(GetContext(), job, progress.NewCLIProgress())
	if err != nil {
		a.notifier.UploadFailed(job.Name, err.Error())
		return err
	}

	a.notifier.UploadComplete(job.Name, result.PublicID)
	fmt.Printf("Uploaded %s -> %s\n", job.Name, result.PublicID)
	return nil
}
