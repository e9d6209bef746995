package app

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/tus/tusd/v2/pkg/filestore"
	tusd "github.com/tus/tusd/v2/pkg/handler"

	"filedropbox/config"
	"filedropbox/internal/logger"
	"filedropbox/internal/server/finalize"
)

// newTusHandler creates the resumable-upload protocol handler backed by
// a file store in the upload directory. In-progress uploads live there
// under their opaque IDs next to .info metadata sidecars until the
// finalize pipeline claims them.
func newTusHandler(cfg *config.Config) (*tusd.UnroutedHandler, error) {
	store := filestore.New(cfg.UploadDir)
	composer := tusd.NewStoreComposer()
	store.UseIn(composer)

	return tusd.NewUnroutedHandler(tusd.Config{
		BasePath:                cfg.BasePath + "/api/tus",
		StoreComposer:           composer,
		MaxSize:                 cfg.MaxFileSize,
		RespectForwardedHeaders: cfg.TrustProxy,
		NotifyCompleteUploads:   true,
	})
}

// registerTusRoutes mounts the tus handler's method handlers on the
// fiber app. The handler parses upload IDs relative to its BasePath, so
// the routes here must mirror it.
func registerTusRoutes(f *fiber.App, basePath string, h *tusd.UnroutedHandler) {
	mount := basePath + "/api/tus"
	wrap := func(hf http.HandlerFunc) fiber.Handler {
		return adaptor.HTTPHandler(h.Middleware(hf))
	}

	f.Post(mount, wrap(h.PostFile))
	// OPTIONS is answered inside the protocol middleware
	f.Options(mount, wrap(h.PostFile))
	f.Head(mount+"/:id", wrap(h.HeadFile))
	f.Patch(mount+"/:id", wrap(h.PatchFile))
	f.Get(mount+"/:id", wrap(h.GetFile))
	f.Delete(mount+"/:id", wrap(h.DelFile))
}

// consumeCompletions feeds finished transfers from the protocol layer
// into the finalize pipeline. Completions of separate uploads may
// overlap; each event is finalized on its own goroutine so one slow
// filesystem does not back up the channel.
func consumeCompletions(ctx context.Context, h *tusd.UnroutedHandler, pipeline *finalize.Pipeline) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-h.CompleteUploads:
			go func(info tusd.FileInfo) {
				up := finalize.CompletedUpload{
					ID:       info.ID,
					Size:     info.Size,
					MetaData: info.MetaData,
					Path:     info.Storage["Path"],
					InfoPath: info.Storage["InfoPath"],
				}
				if _, err := pipeline.Finalize(ctx, up); err != nil {
					logger.Errorf("Failed to finalize upload %s: %v", info.ID, err)
				}
			}(event.Upload)
		}
	}
}
