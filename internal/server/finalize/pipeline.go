package finalize

import (
	"context"
	"fmt"
	"time"

	"filedropbox/internal/db/models"
	"filedropbox/internal/db/repos"
	"filedropbox/internal/logger"
)

// CompletedUpload describes a finished transfer as handed over by the
// protocol layer's completion hook.
type CompletedUpload struct {
	// ID is the transfer protocol's upload identifier
	ID string
	// Size is the uploaded size in bytes
	Size int64
	// MetaData is the metadata declared by the client at upload creation
	MetaData map[string]string
	// Path is the temporary file written by the transfer store
	Path string
	// InfoPath is the transfer store's metadata sidecar file, may be empty
	InfoPath string
}

// Pipeline finalizes completed transfers: sanitize the declared name,
// claim a unique name in the upload directory, clean up transfer
// leftovers, and append a completion ledger row. Multiple completions
// may run concurrently; name uniqueness relies solely on atomic link
// creation inside dedupLink.
type Pipeline struct {
	uploadDir string
	uploads   *repos.UploadRepository
}

// NewPipeline creates a finalize pipeline storing files in uploadDir and
// recording completions through uploads.
func NewPipeline(uploadDir string, uploads *repos.UploadRepository) *Pipeline {
	return &Pipeline{
		uploadDir: uploadDir,
		uploads:   uploads,
	}
}

// Finalize runs the pipeline for one completed transfer. Filesystem
// trouble is absorbed by falling back to the transfer-ID filename; only
// a ledger write failure is returned as an error.
func (p *Pipeline) Finalize(ctx context.Context, up CompletedUpload) (*models.Upload, error) {
	declared := up.MetaData["filename"]
	if declared == "" {
		declared = up.ID
	}
	sanitized := SanitizeFilename(declared)

	result := dedupLink(p.uploadDir, up.Path, sanitized)

	if up.InfoPath != "" {
		removeQuiet(up.InfoPath)
	}

	record := &models.Upload{
		ID:          up.ID,
		Filename:    result.Name,
		Size:        up.Size,
		MimeType:    up.MetaData["filetype"],
		FilePath:    result.Path,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.uploads.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record completed upload %s: %w", up.ID, err)
	}

	logger.InfoWithFields("Upload finalized", map[string]interface{}{
		"id":       up.ID,
		"filename": record.Filename,
		"size":     record.Size,
	})
	return record, nil
}
