package queue

import (
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"filedropbox/internal/localstore"
	"filedropbox/internal/logger"
	"filedropbox/internal/transfer"
)

// Notifier surfaces user-facing upload events. The CLI prints them; a
// headless embedding can pass nil to discard them.
type Notifier interface {
	// UploadFailed reports a terminal transfer failure
	UploadFailed(filename, message string)
	// FileTooLarge reports a file rejected before a task was created
	FileTooLarge(filename string, size, maxSize int64)
	// FileReattached reports a file matched to an interrupted task
	FileReattached(filename string)
}

type nopNotifier struct{}

func (nopNotifier) UploadFailed(string, string)       {}
func (nopNotifier) FileTooLarge(string, int64, int64) {}
func (nopNotifier) FileReattached(string)             {}

// Options configures a Manager.
type Options struct {
	// Store is the durable local storage for task state and settings
	Store *localstore.Store
	// Settings are the initial user settings
	Settings Settings
	// Endpoint is the resumable-upload endpoint URL
	Endpoint string
	// MaxFileSize rejects oversized files before a task is created;
	// zero disables the check
	MaxFileSize int64
	// NewTransfer creates transfer sessions, defaults to transfer.NewTus
	NewTransfer transfer.Factory
	// Notifier receives user-facing events, may be nil
	Notifier Notifier
}

// Manager is the upload orchestration engine: it owns the ordered task
// list, enforces the concurrency ceiling, and persists a redacted
// snapshot of its state on every change. One Manager exists per
// application; it is constructed explicitly and injected into whatever
// owns the application lifetime.
//
// All state mutation is serialized by m.mu; transfer sessions report
// back through hooks that re-enter the manager under the same lock.
type Manager struct {
	mu           sync.Mutex
	tasks        []*Task
	settings     Settings
	endpoint     string
	maxFileSize  int64
	newTransfer  transfer.Factory
	notifier     Notifier
	store        *localstore.Store
	persistTimer *time.Timer
}

// NewManager constructs the engine and restores persisted tasks from
// the store.
func NewManager(opts Options) *Manager {
	m := &Manager{
		settings:    sanitizeSettings(opts.Settings),
		endpoint:    opts.Endpoint,
		maxFileSize: opts.MaxFileSize,
		newTransfer: opts.NewTransfer,
		notifier:    opts.Notifier,
		store:       opts.Store,
	}
	if m.newTransfer == nil {
		m.newTransfer = transfer.NewTus
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	m.restore()
	return m
}

// Tasks returns a snapshot of all tasks in insertion order, without
// file or session handles.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Task, len(m.tasks))
	for i, t := range m.tasks {
		c := *t
		c.file = nil
		c.session = nil
		out[i] = c
	}
	return out
}

// Settings returns the currently applied settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings applies and persists new settings. Raising the
// concurrency ceiling immediately backfills free slots; lowering it
// never preempts running transfers.
func (m *Manager) UpdateSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = sanitizeSettings(s)
	if err := SaveSettings(m.store, m.settings); err != nil {
		logger.Errorf("Failed to persist settings: %v", err)
	}
	m.scheduleNext()
}

// AddFiles submits files for upload. Each file is first matched against
// interrupted tasks by filename and size and re-attached on a match;
// otherwise a new queued task is created unless the file exceeds the
// size limit.
func (m *Manager) AddFiles(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reattached := make(map[string]bool)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			logger.Errorf("Failed to open %s: %v", path, err)
			continue
		}
		info, err := f.Stat()
		if err != nil {
			logger.Errorf("Failed to stat %s: %v", path, err)
			_ = f.Close()
			continue
		}
		name := filepath.Base(path)
		size := info.Size()

		if task := m.findReattachable(name, size, reattached); task != nil {
			task.file = f
			task.Status = StatusPaused
			task.Error = ""
			reattached[task.ID] = true
			m.notifier.FileReattached(name)
			continue
		}

		if m.maxFileSize > 0 && size > m.maxFileSize {
			_ = f.Close()
			m.notifier.FileTooLarge(name, size, m.maxFileSize)
			continue
		}

		m.tasks = append(m.tasks, &Task{
			ID:       uuid.NewString(),
			Filename: name,
			Size:     size,
			Status:   StatusQueued,
			file:     f,
		})
	}

	m.onStatusChange()
}

// findReattachable returns the first unmatched interrupted task with
// the same filename and size. The match is content-blind; first match
// wins and a task is matched at most once per submission batch. Callers
// must hold m.mu.
func (m *Manager) findReattachable(name string, size int64, matched map[string]bool) *Task {
	for _, t := range m.tasks {
		if t.Status == StatusInterrupted && t.Filename == name && t.Size == size &&
			t.file == nil && !matched[t.ID] {
			return t
		}
	}
	return nil
}

// Pause aborts an uploading task's transfer; the server-side partial
// upload stays resumable and the session is retained for resume.
func (m *Manager) Pause(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil || t.Status != StatusUploading {
		return
	}
	if t.session != nil {
		t.session.Abort()
	}
	t.Status = StatusPaused
	m.onStatusChange()
}

// Resume re-queues a paused or interrupted task. A task without a file
// handle cannot resume.
func (m *Manager) Resume(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil || t.file == nil {
		return
	}
	if t.Status != StatusPaused && t.Status != StatusInterrupted {
		return
	}
	t.Status = StatusQueued
	t.Error = ""
	m.onStatusChange()
}

// Cancel aborts and discards a task's in-flight transfer. Cancelled is
// terminal; the server-side partial upload is not resumable afterwards.
func (m *Manager) Cancel(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil || t.Status.Terminal() {
		return
	}
	m.releaseTask(t, true)
	t.Status = StatusCancelled
	m.onStatusChange()
}

// Retry re-queues a failed task with a fresh transfer session and a
// reset retry budget.
func (m *Manager) Retry(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil || t.file == nil || t.Status != StatusFailed {
		return
	}
	t.RetryCount = 0
	t.Error = ""
	t.session = m.createTransfer(t)
	t.Status = StatusQueued
	m.onStatusChange()
}

// Remove deletes a task. An uploading or paused task's transfer is
// aborted and discarded first.
func (m *Manager) Remove(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tasks {
		if t.ID != taskID {
			continue
		}
		discard := t.Status == StatusUploading || t.Status == StatusPaused
		m.releaseTask(t, discard)
		m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
		m.onStatusChange()
		return
	}
}

// ClearCompleted removes all completed tasks in one pass. Completed
// tasks hold no transfer sessions, so there are no side effects.
func (m *Manager) ClearCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.Status == StatusCompleted {
			m.releaseTask(t, false)
			continue
		}
		kept = append(kept, t)
	}
	m.tasks = kept
	m.onStatusChange()
}

// Close flushes pending persistence. Active transfers are left to their
// sessions; on next start they restore as interrupted.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistNow()
}

// releaseTask drops a task's session and file handles, terminating the
// session when discard is set. Callers must hold m.mu.
func (m *Manager) releaseTask(t *Task, discard bool) {
	if t.session != nil {
		if discard {
			t.session.Terminate()
		}
		t.session = nil
	}
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
}

// onStatusChange persists synchronously and re-runs the scheduler.
// Every status-changing transition funnels through here. Callers must
// hold m.mu.
func (m *Manager) onStatusChange() {
	m.persistNow()
	m.scheduleNext()
}

// scheduleNext promotes queued tasks into the free upload slots, in
// insertion order. It is idempotent: with no state change it performs
// no transitions. Callers must hold m.mu.
func (m *Manager) scheduleNext() {
	active := 0
	for _, t := range m.tasks {
		if t.Status == StatusUploading {
			active++
		}
	}
	slots := m.settings.MaxConcurrent - active
	if slots <= 0 {
		return
	}

	started := false
	for _, t := range m.tasks {
		if slots <= 0 {
			break
		}
		if t.Status != StatusQueued || t.file == nil {
			continue
		}
		m.startUpload(t)
		slots--
		started = true
	}

	if started {
		m.persistNow()
	}
}

// startUpload moves a task to uploading, creating its transfer session
// if absent. Callers must hold m.mu.
func (m *Manager) startUpload(t *Task) {
	t.Status = StatusUploading
	t.Error = ""
	if t.session == nil {
		t.session = m.createTransfer(t)
	}
	t.session.Start()
}

// createTransfer builds a transfer session for the task from the
// current settings. Callers must hold m.mu.
func (m *Manager) createTransfer(t *Task) transfer.Transfer {
	filetype := mime.TypeByExtension(filepath.Ext(t.Filename))
	if filetype == "" {
		filetype = "application/octet-stream"
	}

	cfg := transfer.Config{
		Endpoint:  m.endpoint,
		ChunkSize: m.settings.ChunkSizeBytes,
		Timeout:   m.settings.Timeout(),
		Metadata: map[string]string{
			"filename": t.Filename,
			"filetype": filetype,
		},
		Retry: &taskRetryPolicy{
			manager: m,
			taskID:  t.ID,
			inner:   transfer.NewLinearBackoff(m.settings.AutoRetryCount),
		},
	}

	taskID := t.ID
	hooks := transfer.Hooks{
		OnProgress: func(bytesUploaded, bytesTotal int64) {
			m.handleProgress(taskID, bytesUploaded, bytesTotal)
		},
		OnSuccess: func() {
			m.handleSuccess(taskID)
		},
		OnError: func(err error) {
			m.handleFailure(taskID, err)
		},
	}

	return m.newTransfer(t.file, t.Size, cfg, hooks)
}

// handleProgress records transfer progress; writes are debounced to
// bound persistence I/O during active transfers.
func (m *Manager) handleProgress(taskID string, bytesUploaded, bytesTotal int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil {
		return
	}
	t.BytesUploaded = bytesUploaded
	if bytesTotal > 0 {
		t.Progress = int((bytesUploaded*100 + bytesTotal/2) / bytesTotal)
	}
	m.persistDebounced()
}

// handleSuccess completes a task: progress forced to 100, handles
// released.
func (m *Manager) handleSuccess(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil {
		return
	}
	t.Status = StatusCompleted
	t.Progress = 100
	t.BytesUploaded = t.Size
	m.releaseTask(t, false)
	m.onStatusChange()
}

// handleFailure records a terminal transfer failure, releases the
// session, and notifies the user. The file handle is kept so an
// explicit retry can run without re-attaching.
func (m *Manager) handleFailure(taskID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil {
		return
	}
	t.Status = StatusFailed
	t.Error = err.Error()
	t.session = nil
	m.notifier.UploadFailed(t.Filename, err.Error())
	m.onStatusChange()
}

// recordRetry stores the attempt number consumed by an automatic retry
func (m *Manager) recordRetry(taskID string, attempt int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil {
		return
	}
	t.RetryCount = attempt
	m.persistDebounced()
}

// find returns the task with the given ID. Callers must hold m.mu.
func (m *Manager) find(taskID string) *Task {
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t
		}
	}
	return nil
}

// taskRetryPolicy records each automatic retry attempt on its task
// before delegating the decision to the configured backoff policy.
type taskRetryPolicy struct {
	manager *Manager
	taskID  string
	inner   transfer.LinearBackoff
}

func (p *taskRetryPolicy) ShouldRetry(attempt int) bool {
	p.manager.recordRetry(p.taskID, attempt)
	return p.inner.ShouldRetry(attempt)
}

func (p *taskRetryPolicy) Delay(attempt int) time.Duration {
	return p.inner.Delay(attempt)
}
