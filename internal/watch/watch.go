// internal/watch/watch.go
// Package watch reacts to new documents appearing in a watched directory and
// hands them to the ingestion pipeline once they are fully written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mwiater/ragmill/internal/extract"
	"github.com/mwiater/ragmill/internal/logging"
)

// ErrNotReady marks a file whose size did not stabilize above zero within
// the readiness timeout.
var ErrNotReady = errors.New("file not ready")

// defaultPollInterval is how often the readiness wait re-checks a new file.
const defaultPollInterval = time.Second

// Handler ingests one ready document.
type Handler func(ctx context.Context, path string) error

// Watcher observes a single directory (non-recursive) for newly created
// documents with recognized extensions and invokes the handler once per
// qualifying file.
type Watcher struct {
	dir          string
	readyTimeout time.Duration
	pollInterval time.Duration
	handler      Handler
}

// New constructs a Watcher over dir.
func New(dir string, readyTimeout time.Duration, handler Handler) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}
	return &Watcher{
		dir:          dir,
		readyTimeout: readyTimeout,
		pollInterval: defaultPollInterval,
		handler:      handler,
	}, nil
}

// Run watches until the context is canceled. Files are processed one at a
// time, fully, before the next event is considered.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("add watch dir: %w", err)
	}
	logging.LogEvent("watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			w.handleCreate(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.LogEvent("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleCreate(ctx context.Context, path string) {
	if !extract.Supported(path) {
		logging.LogEvent("ignoring unsupported file: %s", path)
		return
	}
	logging.LogEvent("new document detected: %s", path)

	if err := waitReady(ctx, path, w.pollInterval, w.readyTimeout); err != nil {
		logging.LogEvent("skipping %s: %v", path, err)
		return
	}
	if err := w.handler(ctx, path); err != nil {
		logging.LogEvent("ingestion of %s failed: %v", path, err)
	}
}

// waitReady polls the file's size until it is nonzero and unchanged between
// two consecutive polls, or until the timeout elapses. A file still empty or
// still growing at the deadline yields ErrNotReady instead of blocking
// forever.
func waitReady(ctx context.Context, path string, poll, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastSize int64 = -1

	for {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		size := info.Size()
		if size > 0 && size == lastSize {
			return nil
		}
		lastSize = size

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s did not stabilize within %s", ErrNotReady, path, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}
