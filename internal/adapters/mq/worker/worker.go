// Package worker recomputes bout analytics off the request path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/boutstats/internal/adapters/mq/queue"
	"github.com/okian/boutstats/internal/adapters/repository"
	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/model"
	"github.com/okian/boutstats/pkg/logger"
	"github.com/okian/boutstats/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Store is the part of the repository workers read from and write to.
type Store interface {
	Snapshot(ctx context.Context, boutID string) (repository.Snapshot, error)
	SaveResult(ctx context.Context, boutID string, version uint64, res model.AnalyticsResult) (bool, error)
}

// Analyzer computes a result for a bout.
type Analyzer interface {
	Analyze(bout model.Bout, events []model.MatchEvent) (model.AnalyticsResult, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker processes recompute jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current job to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	store    Store
	analyzer Analyzer
	name     string

	processed atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, store Store, analyzer Analyzer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		analyzer: analyzer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Processed returns the number of jobs this worker has handled.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "recompute failed",
					logger.String("bout_id", job.BoutID),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process recomputes one bout from the latest snapshot. Jobs older than the
// snapshot still run; SaveResult discards anything superseded meanwhile.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		w.processed.Add(1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap, err := w.store.Snapshot(ctx, job.BoutID)
	if err != nil {
		metrics.RecordError("worker", "snapshot")
		return fmt.Errorf("snapshot %s: %w", job.BoutID, err)
	}

	res, err := w.analyzer.Analyze(snap.Bout, snap.Events)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordAnalysis(metrics.OutcomeInvalid, len(snap.Events), latency)
		if errors.Is(err, analytics.ErrInvalidInput) {
			// The log holds an event the engine rejects; readers get the
			// error when they ask, nothing to cache.
			w.logger.Debug(ctx, "bout not analyzable",
				logger.String("bout_id", job.BoutID),
				logger.Error(err),
			)
			return nil
		}
		return fmt.Errorf("analyze %s: %w", job.BoutID, err)
	}

	outcome := metrics.OutcomeOK
	if res.Inconsistent {
		outcome = metrics.OutcomeInconsistent
	}
	metrics.RecordAnalysis(outcome, len(snap.Events), latency)

	saved, err := w.store.SaveResult(ctx, job.BoutID, snap.Version, res)
	if err != nil {
		metrics.RecordError("worker", "save_result")
		return fmt.Errorf("save result %s: %w", job.BoutID, err)
	}
	if !saved {
		metrics.RecordStaleResult()
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing one queue. A count below one
// defaults to twice the number of CPUs.
func NewPool(workerCount int, q Queue, store Store, analyzer Analyzer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("pool"),
	}
	for i := range workerCount {
		wopts := append([]Option{WithName(fmt.Sprintf("worker-%d", i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, store, analyzer, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the total number of jobs handled by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
