// Package uploader sends envelopes to the backend on a bounded worker
// pool without making the caller wait for the response.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/panjf2000/ants/v2"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher_test.go -package=uploader

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Uploader performs one upload request. *api.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, env *models.Envelope) (*models.UploadAck, error)
}

// Tracker receives the outcome of every upload. *tracker.Tracker
// satisfies it.
type Tracker interface {
	Expect(env *models.Envelope)
	Record(ack models.UploadAck)
	Fail(uuid string)
}

// Stats counts uploads by outcome.
type Stats struct {
	Sent   int64
	Acked  int64
	Failed int64
}

// Dispatcher queues uploads onto an ants pool. Failed uploads are
// logged and dropped.
type Dispatcher struct {
	ctx     context.Context
	client  Uploader
	tracker Tracker
	logger  *slog.Logger
	pool    *ants.Pool
	wg      sync.WaitGroup

	sent   atomic.Int64
	acked  atomic.Int64
	failed atomic.Int64
}

// New creates a dispatcher with the given number of workers. ctx bounds
// every upload it issues; cancelling it aborts requests in flight.
func New(ctx context.Context, client Uploader, tracker Tracker, logger *slog.Logger, workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating upload pool: %w", err)
	}

	logger.Debug("upload pool started", slog.Int("workers", workers))

	return &Dispatcher{
		ctx:     ctx,
		client:  client,
		tracker: tracker,
		logger:  logger,
		pool:    pool,
	}, nil
}

// Send registers env with the tracker and queues its upload. It returns
// once a worker has accepted the task, never waiting for the response.
// When every worker is busy Send blocks until one frees up.
func (d *Dispatcher) Send(env *models.Envelope) error {
	d.tracker.Expect(env)
	d.wg.Add(1)

	err := d.pool.Submit(func() {
		defer d.wg.Done()
		d.upload(env)
	})
	if err != nil {
		d.wg.Done()
		d.tracker.Fail(env.UUID)
		d.failed.Add(1)

		return fmt.Errorf("queueing upload of %s: %w", env.FilePath, err)
	}

	d.sent.Add(1)

	return nil
}

func (d *Dispatcher) upload(env *models.Envelope) {
	start := time.Now()

	ack, err := d.client.Upload(d.ctx, env)
	if err != nil {
		d.failed.Add(1)
		d.tracker.Fail(env.UUID)
		d.logger.Error("upload failed",
			slog.String("path", env.FilePath),
			slog.String("uuid", env.UUID),
			slog.String("error", err.Error()),
		)

		return
	}

	d.acked.Add(1)
	d.tracker.Record(*ack)
	d.logger.Info("uploaded",
		slog.String("path", env.FilePath),
		slog.String("mime", env.MimeType),
		slog.Int64("id", ack.ID),
		slog.Duration("took", time.Since(start)),
	)
}

// Wait blocks until every queued upload has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for queued uploads and releases the pool. Send returns an
// error afterwards.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:   d.sent.Load(),
		Acked:  d.acked.Load(),
		Failed: d.failed.Load(),
	}
}
