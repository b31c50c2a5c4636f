// Package coordinator drives a sync pass: it walks each selected root in
// order, turns the files it finds into envelopes and hands them to the
// dispatcher, tracking root-level progress.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/alexjbarnes/folder-sync/internal/state"
)

//go:generate mockgen -source=coordinator.go -destination=mock_coordinator_test.go -package=coordinator

// Walker enumerates the files under a root.
type Walker interface {
	WalkFunc(root string, fn func(models.Entry)) error
}

// Builder turns a file into an envelope. A nil envelope with a nil error
// means the file is not importable.
type Builder interface {
	Build(entry models.Entry) (*models.Envelope, error)
}

// Dispatcher queues an envelope for upload.
type Dispatcher interface {
	Send(env *models.Envelope) error
}

// SummaryStore persists the outcome of each root.
type SummaryStore interface {
	SetRootSummary(rs state.RootSummary) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStore records a summary per root after it is walked.
func WithStore(store SummaryStore) Option {
	return func(c *Coordinator) { c.store = store }
}

// WithProgressFunc registers a callback invoked after every root with the
// new progress value.
func WithProgressFunc(fn func(float64)) Option {
	return func(c *Coordinator) { c.onProgress = fn }
}

// Coordinator owns the selected root set and the progress of the current
// pass.
type Coordinator struct {
	walker     Walker
	builder    Builder
	dispatcher Dispatcher
	store      SummaryStore
	logger     *slog.Logger
	onProgress func(float64)
	now        func() time.Time

	mu       sync.Mutex
	roots    []models.Root
	progress float64
	gen      uint64
}

// New creates a coordinator with an empty root set.
func New(w Walker, b Builder, d Dispatcher, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		walker:     w,
		builder:    b,
		dispatcher: d,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddRoots appends roots to the selected set.
func (c *Coordinator) AddRoots(roots ...models.Root) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roots = append(c.roots, roots...)
}

// Roots returns a copy of the selected root set.
func (c *Coordinator) Roots() []models.Root {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Root, len(c.roots))
	copy(out, c.roots)

	return out
}

// Clear empties the root set and resets progress to zero. Uploads already
// queued keep running.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.roots = nil
	c.progress = 0
	c.gen++
	c.mu.Unlock()

	c.notify(0)
}

// Progress returns processed roots over total roots for the current pass.
func (c *Coordinator) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.progress
}

// Sync runs a pass over the selected root set.
func (c *Coordinator) Sync(ctx context.Context) ([]state.RootSummary, error) {
	return c.SyncAll(ctx, c.Roots())
}

// SyncAll walks roots in the order given. After root i of n progress is
// i/n. Every root's grant is released exactly once, including roots
// skipped because ctx was cancelled, whose summaries are not returned.
func (c *Coordinator) SyncAll(ctx context.Context, roots []models.Root) ([]state.RootSummary, error) {
	if len(roots) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	c.progress = 0
	gen := c.gen
	c.mu.Unlock()

	summaries := make([]state.RootSummary, 0, len(roots))
	total := len(roots)

	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			for _, rest := range roots[i:] {
				c.release(rest)
			}

			return summaries, err
		}

		rs := c.syncRoot(root)
		c.release(root)
		summaries = append(summaries, rs)

		if c.store != nil {
			if err := c.store.SetRootSummary(rs); err != nil {
				c.logger.Warn("failed to save root summary",
					slog.String("root", root.Path),
					slog.String("error", err.Error()),
				)
			}
		}

		c.advance(gen, float64(i+1)/float64(total))
	}

	return summaries, nil
}

func (c *Coordinator) syncRoot(root models.Root) state.RootSummary {
	rs := state.RootSummary{Path: root.Path}

	c.logger.Info("walking root", slog.String("root", root.Path))

	err := c.walker.WalkFunc(root.Path, func(entry models.Entry) {
		rs.Files++

		env, err := c.builder.Build(entry)
		if err != nil {
			rs.Errors++
			c.logger.Warn("failed to build envelope",
				slog.String("path", entry.Path),
				slog.String("error", err.Error()),
			)

			return
		}

		if env == nil {
			rs.Skipped++
			return
		}

		if err := c.dispatcher.Send(env); err != nil {
			rs.Errors++
			c.logger.Error("failed to queue upload",
				slog.String("path", entry.Path),
				slog.String("error", err.Error()),
			)

			return
		}

		rs.Dispatched++
	})
	if err != nil {
		rs.Errors++
		c.logger.Error("failed to walk root",
			slog.String("root", root.Path),
			slog.String("error", err.Error()),
		)
	}

	rs.SyncedAt = c.now().UTC()

	c.logger.Info("root done",
		slog.String("root", root.Path),
		slog.Int("files", rs.Files),
		slog.Int("dispatched", rs.Dispatched),
		slog.Int("skipped", rs.Skipped),
		slog.Int("errors", rs.Errors),
	)

	return rs
}

func (c *Coordinator) release(root models.Root) {
	if err := root.Release(); err != nil {
		c.logger.Warn("failed to release root access",
			slog.String("root", root.Path),
			slog.String("error", err.Error()),
		)
	}
}

// advance sets progress unless Clear ran since the pass started.
func (c *Coordinator) advance(gen uint64, p float64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.progress = p
	c.mu.Unlock()

	c.notify(p)
}

func (c *Coordinator) notify(p float64) {
	if c.onProgress != nil {
		c.onProgress(p)
	}
}
