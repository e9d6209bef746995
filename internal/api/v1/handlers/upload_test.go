package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filedropbox/internal/db/models"
	"filedropbox/internal/db/repos"
)

func newTestApp(t *testing.T) (*fiber.App, *repos.UploadRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Upload{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil && sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	repo := repos.NewUploadRepository(db)
	handler := NewUploadHandler(repo)

	app := fiber.New()
	app.Get("/uploads", handler.ListUploads)
	app.Get("/uploads/:id", handler.GetUpload)
	return app, repo
}

func seedUpload(t *testing.T, repo *repos.UploadRepository, id, filename string, completedAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &models.Upload{
		ID:          id,
		Filename:    filename,
		Size:        1024,
		FilePath:    "/data/uploads/" + filename,
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, body io.Reader, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestListUploadsReturnsNewestFirst(t *testing.T) {
	app, repo := newTestApp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedUpload(t, repo, fmt.Sprintf("tus-%d", i), fmt.Sprintf("file-%d.bin", i), base.Add(time.Duration(i)*time.Minute))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/uploads", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Uploads    []models.Upload `json:"uploads"`
		Pagination struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	decodeBody(t, resp.Body, &body)
	require.Len(t, body.Uploads, 3)
	require.Equal(t, "tus-2", body.Uploads[0].ID)
	require.Equal(t, int64(3), body.Pagination.Total)
	require.Equal(t, 1, body.Pagination.Page)
}

func TestListUploadsPaginates(t *testing.T) {
	app, repo := newTestApp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedUpload(t, repo, fmt.Sprintf("tus-%d", i), fmt.Sprintf("file-%d.bin", i), base.Add(time.Duration(i)*time.Minute))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/uploads?page=2&limit=2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Uploads []models.Upload `json:"uploads"`
	}
	decodeBody(t, resp.Body, &body)
	require.Len(t, body.Uploads, 2)
	require.Equal(t, "tus-2", body.Uploads[0].ID)
	require.Equal(t, "tus-1", body.Uploads[1].ID)
}

func TestListUploadsClampsBadQueryValues(t *testing.T) {
	app, repo := newTestApp(t)
	seedUpload(t, repo, "tus-0", "a.bin", time.Now())

	resp, err := app.Test(httptest.NewRequest("GET", "/uploads?page=-3&limit=9999", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	decodeBody(t, resp.Body, &body)
	require.Equal(t, 1, body.Pagination.Page)
	require.Equal(t, defaultPageSize, body.Pagination.Limit)
}

func TestGetUploadByID(t *testing.T) {
	app, repo := newTestApp(t)
	seedUpload(t, repo, "tus-abc", "report.pdf", time.Now())

	resp, err := app.Test(httptest.NewRequest("GET", "/uploads/tus-abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.Upload
	decodeBody(t, resp.Body, &got)
	require.Equal(t, "report.pdf", got.Filename)
}

func TestGetUploadNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/uploads/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
