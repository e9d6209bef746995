package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{10 * 1024 * 1024, "10.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0 TB"},
		{1024 * 1024 * 1024 * 1024 * 1024, "1024.0 TB"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FileSize(tc.bytes), "bytes=%d", tc.bytes)
	}
}

func TestProgress(t *testing.T) {
	require.Equal(t, "0.0%", Progress(0, 0))
	require.Equal(t, "0.0%", Progress(0, 100))
	require.Equal(t, "50.0%", Progress(50, 100))
	require.Equal(t, "33.3%", Progress(1, 3))
	require.Equal(t, "100.0%", Progress(100, 100))
}
