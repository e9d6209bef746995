// Package finalize turns a finished transfer's temporary file into a
// uniquely named file in the upload directory and records it in the
// completion ledger.
package finalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FallbackName is used when a declared filename sanitizes to nothing.
const FallbackName = "unnamed_upload"

// maxFilenameBytes bounds stored names to what common filesystems allow.
const maxFilenameBytes = 255

// SanitizeFilename makes a client-declared filename safe to use as a
// single path component: path separators, NUL, and control characters
// become underscores, "." and ".." are rejected, surrounding whitespace
// and dots are trimmed, and the result is truncated to 255 bytes on a
// rune boundary.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	sanitized := b.String()

	if sanitized == "." || sanitized == ".." {
		sanitized = "_"
	}

	sanitized = strings.TrimFunc(sanitized, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.'
	})

	if len(sanitized) > maxFilenameBytes {
		cut := maxFilenameBytes
		// Back up so the cut does not split a multi-byte character
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut]
	}

	if sanitized == "" {
		return FallbackName
	}
	return sanitized
}
