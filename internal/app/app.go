// Package app assembles the file dropbox server: the fiber application,
// the resumable-upload endpoint, and the finalize pipeline consuming its
// completion events.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"filedropbox/config"
	"filedropbox/internal/api/v1/handlers"
	v1 "filedropbox/internal/api/v1/routes"
	"filedropbox/internal/db/repos"
	"filedropbox/internal/logger"
	"filedropbox/internal/server/finalize"
)

// App is the assembled server with its background completion consumer.
type App struct {
	fiber    *fiber.App
	cfg      *config.Config
	shutdown context.CancelFunc
}

// New builds the server application from configuration and an open
// ledger database.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	uploadRepo := repos.NewUploadRepository(db)
	pipeline := finalize.NewPipeline(cfg.UploadDir, uploadRepo)

	f := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		// Chunk sizes are client-chosen; size enforcement happens in
		// the tus handler against MaxFileSize.
		BodyLimit: -1,
	})
	f.Use(fiberlogger.New())

	f.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1.Register(f, cfg.BasePath, handlers.NewUploadHandler(uploadRepo))

	tus, err := newTusHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("create tus handler: %w", err)
	}
	registerTusRoutes(f, cfg.BasePath, tus)

	ctx, cancel := context.WithCancel(context.Background())
	go consumeCompletions(ctx, tus, pipeline)

	return &App{fiber: f, cfg: cfg, shutdown: cancel}, nil
}

// Listen serves the application on the configured address and blocks.
func (a *App) Listen() error {
	logger.InfoWithFields("Server listening", map[string]interface{}{
		"addr":       a.cfg.ListenAddr,
		"upload_dir": a.cfg.UploadDir,
	})
	return a.fiber.Listen(a.cfg.ListenAddr)
}

// Shutdown stops the completion consumer and the HTTP server.
func (a *App) Shutdown() error {
	a.shutdown()
	return a.fiber.Shutdown()
}

// Fiber exposes the underlying fiber application for tests.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
