// Package handlers provides HTTP request handling
package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"filedropbox/internal/db/repos"
)

// defaultPageSize bounds a single uploads listing page
const defaultPageSize = 50

// UploadHandler handles HTTP requests for the completion ledger
type UploadHandler struct {
	uploads *repos.UploadRepository
}

// NewUploadHandler creates a new instance of UploadHandler
func NewUploadHandler(uploads *repos.UploadRepository) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
	}
}

// ListUploads handles retrieving completed uploads, newest first, with pagination
func (h *UploadHandler) ListUploads(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	offset := (page - 1) * limit

	uploads, err := h.uploads.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	total, err := h.uploads.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"uploads": uploads,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetUpload handles retrieving one completion record by upload ID
func (h *UploadHandler) GetUpload(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "upload id is required"})
	}

	upload, err := h.uploads.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(upload)
}
