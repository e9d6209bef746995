package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filedropbox/internal/db/models"
)

// UploadRepositoryTestSuite provides a base test suite for ledger tests
type UploadRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	ctx        context.Context
	uploadRepo *UploadRepository
}

func (s *UploadRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.Upload{})
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.uploadRepo = NewUploadRepository(s.db)
	s.ctx = context.Background()
}

func (s *UploadRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *UploadRepositoryTestSuite) createTestUpload(id, filename string, completedAt time.Time) *models.Upload {
	upload := &models.Upload{
		ID:          id,
		Filename:    filename,
		Size:        1024,
		MimeType:    "application/pdf",
		FilePath:    "/data/uploads/" + filename,
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	}
	err := s.uploadRepo.Create(s.ctx, upload)
	s.Require().NoError(err)
	return upload
}

func (s *UploadRepositoryTestSuite) TestCreateAndGetByID() {
	created := s.createTestUpload("tus-1", "report.pdf", time.Now())

	got, err := s.uploadRepo.GetByID(s.ctx, "tus-1")
	s.Require().NoError(err)
	s.Equal(created.Filename, got.Filename)
	s.Equal(created.Size, got.Size)
	s.Equal(created.FilePath, got.FilePath)
	s.Equal(created.CompletedAt, got.CompletedAt)
}

func (s *UploadRepositoryTestSuite) TestGetByIDNotFound() {
	_, err := s.uploadRepo.GetByID(s.ctx, "does-not-exist")
	s.Require().Error(err)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *UploadRepositoryTestSuite) TestCreateRejectsIncompleteRecord() {
	err := s.uploadRepo.Create(s.ctx, &models.Upload{ID: "tus-1"})
	s.Require().Error(err)
}

func (s *UploadRepositoryTestSuite) TestCreateRejectsDuplicateID() {
	s.createTestUpload("tus-1", "report.pdf", time.Now())

	err := s.uploadRepo.Create(s.ctx, &models.Upload{
		ID:          "tus-1",
		Filename:    "other.pdf",
		Size:        1,
		FilePath:    "/data/uploads/other.pdf",
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	})
	s.Require().Error(err)
}

func (s *UploadRepositoryTestSuite) TestListNewestFirst() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.createTestUpload(fmt.Sprintf("tus-%d", i), fmt.Sprintf("file-%d.bin", i), base.Add(time.Duration(i)*time.Minute))
	}

	uploads, err := s.uploadRepo.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(uploads, 3)
	s.Equal("tus-2", uploads[0].ID)
	s.Equal("tus-0", uploads[2].ID)
}

func (s *UploadRepositoryTestSuite) TestListPagination() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.createTestUpload(fmt.Sprintf("tus-%d", i), fmt.Sprintf("file-%d.bin", i), base.Add(time.Duration(i)*time.Minute))
	}

	page, err := s.uploadRepo.List(s.ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("tus-2", page[0].ID)
	s.Equal("tus-1", page[1].ID)
}

func (s *UploadRepositoryTestSuite) TestCount() {
	count, err := s.uploadRepo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), count)

	s.createTestUpload("tus-1", "a.bin", time.Now())
	s.createTestUpload("tus-2", "b.bin", time.Now())

	count, err = s.uploadRepo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

// TestUploadRepository runs the test suite for the completion ledger
func TestUploadRepository(t *testing.T) {
	suite.Run(t, new(UploadRepositoryTestSuite))
}
