// Package transfer wraps the resumable-upload client library behind a
// small session interface the upload queue drives. Business logic stays
// out of the sessions: progress, outcome, and retry decisions are all
// injected hooks.
package transfer

import (
	"os"
	"time"
)

// Hooks carries the callbacks a transfer session reports through. All
// callbacks may be invoked from the session's own goroutine.
type Hooks struct {
	// OnProgress is called as bytes reach the server
	OnProgress func(bytesUploaded, bytesTotal int64)
	// OnSuccess is called once when the transfer completes
	OnSuccess func()
	// OnError is called once when the transfer fails terminally
	OnError func(err error)
}

// RetryPolicy decides whether a failed chunk attempt is retried and how
// long to wait before retrying. The attempt number starts at 1.
type RetryPolicy interface {
	ShouldRetry(attempt int) bool
	Delay(attempt int) time.Duration
}

// Config is the per-upload transfer configuration.
type Config struct {
	// Endpoint is the resumable-upload endpoint URL
	Endpoint string
	// ChunkSize is the request payload size in bytes
	ChunkSize int64
	// Timeout applies to each individual chunk request
	Timeout time.Duration
	// Metadata is sent to the server at upload creation
	Metadata map[string]string
	// Retry governs automatic retries of transient failures
	Retry RetryPolicy
}

// Transfer is one live resumable transfer session. A session is owned
// by exactly one upload task.
type Transfer interface {
	// Start begins or resumes sending data. Calling Start on a session
	// that was aborted resumes from the server's current offset.
	Start()
	// Abort stops sending. The server-side partial upload remains
	// resumable.
	Abort()
	// Terminate stops sending and discards the server-side upload.
	Terminate()
}

// Factory creates transfer sessions. The queue depends on this type so
// tests can substitute fakes for the real protocol client.
type Factory func(file *os.File, size int64, cfg Config, hooks Hooks) Transfer
