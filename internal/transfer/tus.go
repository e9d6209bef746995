package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/bdragon300/tusgo"

	"filedropbox/internal/logger"
)

// terminateTimeout bounds the best-effort DELETE sent when a session is
// terminated.
const terminateTimeout = 10 * time.Second

// tusTransfer is a Transfer backed by the tus protocol client. Data is
// sent in ChunkSize requests, each carrying the http.Client timeout, so
// a stalled network surfaces as a transient error instead of a hang.
type tusTransfer struct {
	file  *os.File
	size  int64
	cfg   Config
	hooks Hooks

	mu     sync.Mutex
	upload tusgo.Upload
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTus is a Factory producing tus-backed transfer sessions.
func NewTus(file *os.File, size int64, cfg Config, hooks Hooks) Transfer {
	return &tusTransfer{
		file:  file,
		size:  size,
		cfg:   cfg,
		hooks: hooks,
	}
}

// Start begins or resumes the transfer on its own goroutine. A previous
// run is cancelled and drained first so only one goroutine ever reads
// the file.
func (t *tusTransfer) Start() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	prev := t.done
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		t.run(ctx)
	}()
}

// Abort stops the in-flight request. The server keeps the partial
// upload, so a later Start resumes from its offset.
func (t *tusTransfer) Abort() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()
}

// Terminate aborts and then discards the server-side upload. The
// removal is best-effort: a failure leaves an orphan on the server and
// is only logged.
func (t *tusTransfer) Terminate() {
	t.Abort()

	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	go func() {
		// Wait out the cancelled run so the upload state is settled
		if done != nil {
			<-done
		}
		if t.upload.Location == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
		defer cancel()
		cl, err := t.newClient(ctx)
		if err != nil {
			return
		}
		if _, err := cl.DeleteUpload(t.upload); err != nil {
			logger.Warnf("Failed to delete remote upload %s: %v", t.upload.Location, err)
		}
	}()
}

func (t *tusTransfer) run(ctx context.Context) {
	err := t.transfer(ctx)
	if err == nil {
		t.reportProgress()
		if t.hooks.OnSuccess != nil {
			t.hooks.OnSuccess()
		}
		return
	}
	// A locally aborted run is not a failure
	if ctx.Err() != nil {
		return
	}
	if t.hooks.OnError != nil {
		t.hooks.OnError(err)
	}
}

// transfer drives the upload until completion, retrying transient
// failures per the configured policy.
func (t *tusTransfer) transfer(ctx context.Context) error {
	cl, err := t.newClient(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	created := t.upload.Location != ""
	t.mu.Unlock()
	if !created {
		if _, err := cl.CreateUpload(&t.upload, t.size, false, t.cfg.Metadata); err != nil {
			return fmt.Errorf("create upload: %w", err)
		}
	}

	stream := tusgo.NewUploadStream(cl, &t.upload)
	if t.cfg.ChunkSize > 0 {
		stream.ChunkSize = t.cfg.ChunkSize
	}

	for attempt := 1; ; attempt++ {
		err := t.copyChunks(ctx, stream)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if t.cfg.Retry == nil || !t.cfg.Retry.ShouldRetry(attempt) {
			return err
		}
		logger.Debugf("Transfer attempt %d failed, retrying: %v", attempt, err)
		if err := sleep(ctx, t.cfg.Retry.Delay(attempt)); err != nil {
			return err
		}
	}
}

// copyChunks synchronizes with the server offset and streams the rest
// of the file one chunk per request, reporting progress after each.
func (t *tusTransfer) copyChunks(ctx context.Context, stream *tusgo.UploadStream) error {
	if _, err := stream.Sync(); err != nil {
		return fmt.Errorf("sync upload offset: %w", err)
	}
	if _, err := t.file.Seek(t.upload.RemoteOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek source file: %w", err)
	}
	t.reportProgress()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := t.size - t.upload.RemoteOffset
		if remaining <= 0 {
			return nil
		}
		n := t.cfg.ChunkSize
		if n <= 0 || n > remaining {
			n = remaining
		}
		if _, err := io.CopyN(stream, t.file, n); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("upload chunk: %w", err)
		}
		t.reportProgress()
	}
}

func (t *tusTransfer) newClient(ctx context.Context) (*tusgo.Client, error) {
	base, err := url.Parse(t.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", t.cfg.Endpoint, err)
	}
	// Each chunk request carries an explicit timeout
	httpClient := &http.Client{Timeout: t.cfg.Timeout}
	return tusgo.NewClient(httpClient, base).WithContext(ctx), nil
}

func (t *tusTransfer) reportProgress() {
	if t.hooks.OnProgress != nil {
		t.hooks.OnProgress(t.upload.RemoteOffset, t.size)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
