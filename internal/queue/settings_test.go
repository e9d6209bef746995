package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettingsReturnsDefaultsWhenEmpty(t *testing.T) {
	store := newTestStore(t)
	require.Equal(t, DefaultSettings(), LoadSettings(store))
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	s := Settings{
		Theme:               ThemeDark,
		MaxConcurrent:       5,
		AutoRetryCount:      1,
		ConnectionTimeoutMs: 5000,
		ChunkSizeBytes:      1 << 20,
	}
	require.NoError(t, SaveSettings(store, s))
	require.Equal(t, s, LoadSettings(store))
}

func TestLoadSettingsMergesDefaultsOverMissingFields(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("settings", []byte(`{"maxConcurrent": 7}`)))

	s := LoadSettings(store)
	require.Equal(t, 7, s.MaxConcurrent)
	require.Equal(t, DefaultSettings().Theme, s.Theme)
	require.Equal(t, DefaultSettings().ChunkSizeBytes, s.ChunkSizeBytes)
}

func TestLoadSettingsDiscardsCorruptedData(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("settings", []byte("not json")))
	require.Equal(t, DefaultSettings(), LoadSettings(store))
}

func TestSanitizeSettingsClampsInvalidValues(t *testing.T) {
	s := sanitizeSettings(Settings{Theme: "neon", MaxConcurrent: 0, AutoRetryCount: -1, ConnectionTimeoutMs: -5, ChunkSizeBytes: 0})
	require.Equal(t, DefaultSettings(), s)
}
