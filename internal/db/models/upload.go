package models

import "fmt"

// Upload is one row of the completion ledger: a single finalized upload.
// Rows are append-only; nothing in the system updates or deletes them.
type Upload struct {
	// ID is the transfer protocol's own upload identifier
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Filename is the final stored name, post-sanitization and post-dedup
	Filename string `json:"filename" gorm:"column:filename;not null"`
	// Size is the uploaded size in bytes
	Size int64 `json:"size" gorm:"column:size;not null"`
	// MimeType is the type declared by the client, may be empty
	MimeType string `json:"mime_type,omitempty" gorm:"column:mime_type"`
	// FilePath is the absolute stored path inside the upload directory
	FilePath string `json:"file_path" gorm:"column:file_path;not null"`
	// CompletedAt is the finalize timestamp in RFC 3339
	CompletedAt string `json:"completed_at" gorm:"column:completed_at;not null"`
}

// TableName overrides the gorm table name
func (Upload) TableName() string {
	return "uploads"
}

// Validate ensures the ledger row is complete enough to record
func (u *Upload) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("upload id cannot be empty")
	}
	if u.Filename == "" {
		return fmt.Errorf("upload filename cannot be empty")
	}
	if u.FilePath == "" {
		return fmt.Errorf("upload file path cannot be empty")
	}
	return nil
}
