// Package watcher uploads files that appear or change under the selected
// roots after the initial sync pass.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/alexjbarnes/folder-sync/internal/walker"
	"github.com/fsnotify/fsnotify"
)

const (
	// defaultTick is how often pending events are checked.
	defaultTick = 500 * time.Millisecond

	// defaultSettle is how long a path must stay quiet before it is
	// uploaded, so a burst of writes results in one upload.
	defaultSettle = 300 * time.Millisecond
)

// Locator resolves paths to walker entries. *walker.Walker satisfies it.
type Locator interface {
	EntryAt(root, path string) (models.Entry, bool)
	Dirs(root string) ([]string, error)
	IsDir(path string) bool
	IgnoredPath(root, path string) bool
}

// Builder turns a file into an envelope.
type Builder interface {
	Build(entry models.Entry) (*models.Envelope, error)
}

// Dispatcher queues an envelope for upload.
type Dispatcher interface {
	Send(env *models.Envelope) error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the tick and settle intervals.
func WithDebounce(tick, settle time.Duration) Option {
	return func(w *Watcher) {
		w.tick = tick
		w.settle = settle
	}
}

// Watcher feeds filesystem events through the builder and dispatcher.
type Watcher struct {
	locator    Locator
	builder    Builder
	dispatcher Dispatcher
	logger     *slog.Logger
	tick       time.Duration
	settle     time.Duration

	roots   []string
	fsw     *fsnotify.Watcher
	pending map[string]time.Time
}

// New creates a watcher.
func New(locator Locator, builder Builder, dispatcher Dispatcher, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		locator:    locator,
		builder:    builder,
		dispatcher: dispatcher,
		logger:     logger,
		tick:       defaultTick,
		settle:     defaultSettle,
		pending:    make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch blocks until ctx is cancelled. Roots that cannot be watched are
// logged and skipped; an error is returned only when none can be.
func (w *Watcher) Watch(ctx context.Context, roots []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	w.fsw = fsw

	for _, root := range roots {
		if err := w.addRoot(root); err != nil {
			w.logger.Warn("not watching root",
				slog.String("root", root),
				slog.String("error", err.Error()),
			)

			continue
		}

		w.roots = append(w.roots, root)
	}

	if len(w.roots) == 0 {
		return fmt.Errorf("no watchable roots")
	}

	w.logger.Info("file watcher started", slog.Int("roots", len(w.roots)))

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed unexpectedly")
			}

			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed unexpectedly")
			}

			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) addRoot(root string) error {
	dirs, err := w.locator.Dirs(root)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	root, ok := w.rootOf(event.Name)
	if !ok || w.locator.IgnoredPath(root, event.Name) {
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		if event.Has(fsnotify.Create) && w.watchNewDir(root, event.Name) {
			return
		}

		w.pending[event.Name] = time.Now()
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, event.Name)
		_ = w.fsw.Remove(event.Name)
	}
}

// watchNewDir adds a freshly created directory when files inside it are
// still within the depth cap. It reports whether path was a directory.
func (w *Watcher) watchNewDir(root, path string) bool {
	if !w.locator.IsDir(path) {
		return false
	}

	prov, ok := walker.ProvenanceOf(root, path)
	if !ok || prov == models.ProvenanceSubfolder {
		return true
	}

	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}

	return true
}

// flush uploads every pending path that has been quiet for the settle
// interval.
func (w *Watcher) flush(now time.Time) {
	for path, seen := range w.pending {
		if now.Sub(seen) < w.settle {
			continue
		}

		delete(w.pending, path)
		w.upload(path)
	}
}

func (w *Watcher) upload(path string) {
	root, ok := w.rootOf(path)
	if !ok {
		return
	}

	entry, ok := w.locator.EntryAt(root, path)
	if !ok {
		return
	}

	env, err := w.builder.Build(entry)
	if err != nil {
		w.logger.Warn("failed to build envelope",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return
	}

	if env == nil {
		return
	}

	if err := w.dispatcher.Send(env); err != nil {
		w.logger.Error("failed to queue upload",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return
	}

	w.logger.Info("queued changed file", slog.String("path", path))
}

// rootOf returns the most specific watched root containing path.
func (w *Watcher) rootOf(path string) (string, bool) {
	best := ""

	for _, root := range w.roots {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}

		if len(root) > len(best) {
			best = root
		}
	}

	return best, best != ""
}
