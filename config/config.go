// Package config loads the environment-level configuration for the
// file dropbox server and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default configuration values
const (
	// DefaultUploadDir is the directory finalized uploads are stored in
	DefaultUploadDir = "./uploads"
	// DefaultDBPath is the path of the completion ledger database
	DefaultDBPath = "./data/uploads.db"
	// DefaultMaxFileSize is the maximum accepted file size in bytes (10 GiB)
	DefaultMaxFileSize = int64(10737418240)
	// DefaultListenAddr is the address the server listens on
	DefaultListenAddr = ":3000"
)

// Config holds the environment-level settings shared by the server and CLI
type Config struct {
	// UploadDir is the final destination directory for completed uploads
	UploadDir string
	// DBPath is the SQLite completion ledger path
	DBPath string
	// MaxFileSize is the maximum accepted file size in bytes
	MaxFileSize int64
	// BasePath is the URL path prefix the app is served under, without a trailing slash
	BasePath string
	// TrustProxy enables honoring forwarded headers from a reverse proxy
	TrustProxy bool
	// ListenAddr is the server listen address
	ListenAddr string
}

// Load reads the configuration from the environment. A .env file is
// loaded first if present; missing variables fall back to defaults.
func Load() (*Config, error) {
	// Best-effort: a missing .env file is not an error
	_ = godotenv.Load()

	maxSizeStr := GetEnv("FILE_DROPBOX_MAX_FILE_SIZE", strconv.FormatInt(DefaultMaxFileSize, 10))
	maxSize, err := strconv.ParseInt(maxSizeStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FILE_DROPBOX_MAX_FILE_SIZE %q: %w", maxSizeStr, err)
	}

	cfg := &Config{
		UploadDir:   GetEnv("FILE_DROPBOX_UPLOAD_DIR", DefaultUploadDir),
		DBPath:      GetEnv("FILE_DROPBOX_DB_PATH", DefaultDBPath),
		MaxFileSize: maxSize,
		BasePath:    normalizeBasePath(GetEnv("FILE_DROPBOX_BASE_PATH", "/")),
		TrustProxy:  GetEnv("FILE_DROPBOX_TRUST_PROXY", "false") == "true",
		ListenAddr:  GetEnv("FILE_DROPBOX_LISTEN_ADDR", DefaultListenAddr),
	}
	return cfg, nil
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// normalizeBasePath strips the trailing slash so paths can be joined
// with a plain "+". The root prefix "/" normalizes to the empty string.
func normalizeBasePath(p string) string {
	return strings.TrimRight(p, "/")
}
