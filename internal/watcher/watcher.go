// Package watcher watches the uploads inbox and triggers the uploads
// pipeline after file activity settles.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// DefaultSettle is how long the inbox must stay quiet before a processing
// run starts. Copies of large files arrive as many write events; waiting
// for quiet avoids ingesting half-written files.
const DefaultSettle = 2 * time.Second

// ProcessFunc runs the uploads pipeline. Invoked once per settled burst of
// inbox activity.
type ProcessFunc func(ctx context.Context) error

// Watcher drives ProcessFunc from fsnotify events on the inbox directory.
type Watcher struct {
	dir     string
	settle  time.Duration
	process ProcessFunc
	logger  *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// New creates an inbox watcher. A zero settle duration uses DefaultSettle.
func New(dir string, settle time.Duration, process ProcessFunc, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, settle: settle, process: process, logger: logger}
}

// Run watches the inbox until the context is cancelled. Every burst of
// create/write/rename activity schedules one processing run after the
// settle window. Processing errors are logged, not fatal; the watch
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "create uploads directory", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return docerrors.InternalError("create file watcher", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return docerrors.New(docerrors.ErrCodeFilePermission, "watch uploads directory", err)
	}

	w.logger.Info("watching uploads inbox",
		slog.String("dir", w.dir),
		slog.Duration("settle", w.settle))

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("inbox activity",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))
			w.schedule(fire)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-fire:
			if err := w.process(ctx); err != nil {
				w.logger.Warn("uploads processing failed",
					slog.String("error", err.Error()))
			}
		}
	}
}

// schedule arms (or re-arms) the settle timer. Each new event pushes the
// run further out until the inbox goes quiet.
func (w *Watcher) schedule(fire chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, func() {
		select {
		case fire <- struct{}{}:
		default: // a run is already queued
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
