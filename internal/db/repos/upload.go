package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"filedropbox/internal/db/models"
)

// UploadRepository handles database operations for the completion ledger.
// The ledger is append-only, so only Create and read operations exist.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new instance of UploadRepository
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{
		db: db,
	}
}

// Create appends a new completion record to the ledger
func (r *UploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("invalid upload record: %w", err)
	}
	return r.db.WithContext(ctx).Create(upload).Error
}

// GetByID retrieves a completion record by its upload ID
func (r *UploadRepository) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	var upload models.Upload
	if err := r.db.WithContext(ctx).
		Where(models.Upload{ID: id}).
		First(&upload).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// List retrieves completion records, newest first, with pagination
func (r *UploadRepository) List(ctx context.Context, limit, offset int) ([]models.Upload, error) {
	var uploads []models.Upload
	query := r.db.WithContext(ctx).Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Find(&uploads).Error
	return uploads, err
}

// Count returns the total number of completion records
func (r *UploadRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Upload{}).Count(&count).Error
	return count, err
}
