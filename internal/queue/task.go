// Package queue implements the client-side upload orchestration engine:
// the task state machine, the concurrency-limited scheduler, and the
// crash-resilient persistence of the task list.
package queue

import (
	"fmt"
	"os"

	"filedropbox/internal/transfer"
)

// Status represents the current state of an upload task
type Status string

// Task status constants
const (
	// StatusQueued indicates the task is waiting for an upload slot
	StatusQueued Status = "queued"
	// StatusUploading indicates the task is actively transferring
	StatusUploading Status = "uploading"
	// StatusPaused indicates the task was paused and can be resumed
	StatusPaused Status = "paused"
	// StatusCompleted indicates the transfer finished successfully
	StatusCompleted Status = "completed"
	// StatusFailed indicates the transfer failed after exhausting retries
	StatusFailed Status = "failed"
	// StatusCancelled indicates the task was cancelled and its upload discarded
	StatusCancelled Status = "cancelled"
	// StatusInterrupted indicates the task was live when a previous
	// session ended; its file must be re-attached before resuming
	StatusInterrupted Status = "interrupted"
)

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status
func ParseStatus(str string) (Status, error) {
	switch Status(str) {
	case StatusQueued, StatusUploading, StatusPaused, StatusCompleted,
		StatusFailed, StatusCancelled, StatusInterrupted:
		return Status(str), nil
	default:
		return "", fmt.Errorf("invalid task status: %s", str)
	}
}

// Task is one logical file transfer attempt. The Manager exclusively
// owns all Task instances; snapshots handed out by Tasks never carry
// the file or session handles.
type Task struct {
	// ID is assigned at creation and stable for the task's lifetime
	ID string `json:"id"`
	// Filename and Size are declared from the source file at creation
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	// Status is the state machine position
	Status Status `json:"status"`
	// Progress is 0-100
	Progress int `json:"progress"`
	// BytesUploaded is monotonically non-decreasing while uploading
	BytesUploaded int64 `json:"bytesUploaded"`
	// Error is the last failure message, empty otherwise
	Error string `json:"error,omitempty"`
	// RetryCount is the number of automatic retries consumed by the
	// active transfer
	RetryCount int `json:"retryCount"`

	// file is the source byte handle; only present for tasks created or
	// re-attached in the current session, never persisted. A task with
	// no file cannot enter StatusUploading.
	file *os.File
	// session is the live transfer session; exclusively owned by the
	// task and released on success, failure, cancel, or removal.
	session transfer.Transfer
}

// PersistedTask is the durable subset of Task: everything except the
// file and session handles. It is the only on-disk representation.
type PersistedTask struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	Status        Status `json:"status"`
	Progress      int    `json:"progress"`
	BytesUploaded int64  `json:"bytesUploaded"`
	Error         string `json:"error,omitempty"`
	RetryCount    int    `json:"retryCount"`
}

// toPersisted maps a task to its durable record
func (t *Task) toPersisted() PersistedTask {
	return PersistedTask{
		ID:            t.ID,
		Filename:      t.Filename,
		Size:          t.Size,
		Status:        t.Status,
		Progress:      t.Progress,
		BytesUploaded: t.BytesUploaded,
		Error:         t.Error,
		RetryCount:    t.RetryCount,
	}
}

// fromPersisted maps a durable record back to a task with no handles
// attached
func fromPersisted(p PersistedTask) *Task {
	return &Task{
		ID:            p.ID,
		Filename:      p.Filename,
		Size:          p.Size,
		Status:        p.Status,
		Progress:      p.Progress,
		BytesUploaded: p.BytesUploaded,
		Error:         p.Error,
		RetryCount:    p.RetryCount,
	}
}
