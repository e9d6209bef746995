package v1

import (
	"github.com/gofiber/fiber/v2"

	"filedropbox/internal/api/v1/handlers"
)

// SetupRoutes configures the v1 API routes
func SetupRoutes(router fiber.Router, uploadHandler *handlers.UploadHandler) {
	uploads := router.Group("/uploads")
	uploads.Get("/", uploadHandler.ListUploads)
	uploads.Get("/:id", uploadHandler.GetUpload)
}

// Register registers the API routes under the configured base path
func Register(app *fiber.App, basePath string, uploadHandler *handlers.UploadHandler) {
	group := app.Group(basePath + "/api")
	SetupRoutes(group, uploadHandler)
}
