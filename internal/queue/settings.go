package queue

import (
	"encoding/json"
	"time"

	"filedropbox/internal/localstore"
	"filedropbox/internal/logger"
)

// Theme preference values
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// settingsKey is the local-storage key settings are stored under
const settingsKey = "settings"

// Settings are the user-facing preferences applied to new and retried
// transfers.
type Settings struct {
	Theme               string `json:"theme"`
	MaxConcurrent       int    `json:"maxConcurrent"`
	AutoRetryCount      int    `json:"autoRetryCount"`
	ConnectionTimeoutMs int    `json:"connectionTimeoutMs"`
	ChunkSizeBytes      int64  `json:"chunkSizeBytes"`
}

// DefaultSettings returns the defaults used when nothing is persisted
func DefaultSettings() Settings {
	return Settings{
		Theme:               ThemeSystem,
		MaxConcurrent:       3,
		AutoRetryCount:      3,
		ConnectionTimeoutMs: 30000,
		ChunkSizeBytes:      10485760, // 10 MB
	}
}

// Timeout returns the per-request connection timeout
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.ConnectionTimeoutMs) * time.Millisecond
}

// LoadSettings reads persisted settings, merging defaults over missing
// fields. Corrupted data falls back to the defaults.
func LoadSettings(store *localstore.Store) Settings {
	s := DefaultSettings()
	data, err := store.Get(settingsKey)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warnf("Discarding corrupted settings: %v", err)
		return DefaultSettings()
	}
	return sanitizeSettings(s)
}

// SaveSettings persists settings to local storage
func SaveSettings(store *localstore.Store, s Settings) error {
	data, err := json.Marshal(sanitizeSettings(s))
	if err != nil {
		return err
	}
	return store.Set(settingsKey, data)
}

// sanitizeSettings clamps out-of-range values back to defaults
func sanitizeSettings(s Settings) Settings {
	defaults := DefaultSettings()
	if s.Theme != ThemeSystem && s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = defaults.Theme
	}
	if s.MaxConcurrent < 1 {
		s.MaxConcurrent = defaults.MaxConcurrent
	}
	if s.AutoRetryCount < 0 {
		s.AutoRetryCount = defaults.AutoRetryCount
	}
	if s.ConnectionTimeoutMs < 1 {
		s.ConnectionTimeoutMs = defaults.ConnectionTimeoutMs
	}
	if s.ChunkSizeBytes < 1 {
		s.ChunkSizeBytes = defaults.ChunkSizeBytes
	}
	return s
}
