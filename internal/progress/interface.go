package progress

import "io"

// ProgressUI manages the multi-bar display for concurrent upload batches.
type ProgressUI interface {
	// AddFileBar creates a new progress bar for an upload
	AddFileBar(name, folder string, size int64) FileBarHandle

	// Wait blocks until all progress bars complete
	Wait()

	// Writer returns an io.Writer that safely outputs above the progress bars.
	// Returns mpb's writer if in terminal mode, otherwise os.Stderr.
	Writer() io.Writer

	// IsTerminal returns true if output is to a terminal (progress bars are active)
	IsTerminal() bool
}

// FileBarHandle represents a handle to a single upload's progress bar
type FileBarHandle interface {
	// UpdateProgress updates the progress bar based on a fraction (0.0 to 1.0)
	UpdateProgress(fraction float64)

	// SetRetry updates the retry counter and visually marks the bar
	SetRetry(count int)

	// Complete marks the upload as finished and prints a summary
	Complete(publicID string, err error)
}
