package queue

import (
	"encoding/json"
	"errors"
	"time"

	"filedropbox/internal/localstore"
	"filedropbox/internal/logger"
)

// tasksKey is the local-storage key the task list is stored under
const tasksKey = "uploadQueue"

// persistDebounce coalesces progress-driven writes; status changes
// bypass it via persistNow.
const persistDebounce = time.Second

// persistTasks writes the redacted task snapshot to local storage.
// Callers must hold m.mu.
func (m *Manager) persistTasks() {
	records := make([]PersistedTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		records = append(records, t.toPersisted())
	}
	data, err := json.Marshal(records)
	if err != nil {
		logger.Errorf("Failed to encode upload queue: %v", err)
		return
	}
	if err := m.store.Set(tasksKey, data); err != nil {
		logger.Errorf("Failed to persist upload queue: %v", err)
	}
}

// persistNow flushes any pending debounce timer and writes synchronously.
// Callers must hold m.mu.
func (m *Manager) persistNow() {
	if m.persistTimer != nil {
		m.persistTimer.Stop()
		m.persistTimer = nil
	}
	m.persistTasks()
}

// persistDebounced schedules a write unless one is already pending.
// Callers must hold m.mu.
func (m *Manager) persistDebounced() {
	if m.persistTimer != nil {
		return
	}
	m.persistTimer = time.AfterFunc(persistDebounce, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.persistTimer = nil
		m.persistTasks()
	})
}

// restore loads the persisted task list at construction time. Statuses
// are reconciled to session-start states: completed survives, cancelled
// tasks are dropped, and everything else becomes interrupted because no
// file bytes or transfer session outlive a restart. Corrupted data is
// treated as empty state.
func (m *Manager) restore() {
	data, err := m.store.Get(tasksKey)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			logger.Warnf("Failed to read persisted upload queue: %v", err)
		}
		return
	}

	var records []PersistedTask
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warnf("Discarding corrupted upload queue state: %v", err)
		if err := m.store.Delete(tasksKey); err != nil {
			logger.Warnf("Failed to clear upload queue state: %v", err)
		}
		return
	}

	for _, p := range records {
		switch p.Status {
		case StatusCancelled:
			continue
		case StatusCompleted:
			// Terminal, preserved as-is
		default:
			p.Status = StatusInterrupted
		}
		m.tasks = append(m.tasks, fromPersisted(p))
	}
}
