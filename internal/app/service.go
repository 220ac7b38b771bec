// Package service wires the bout store, deduplication, recompute queue, worker
// pool and analytics engine behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/boutstats/internal/adapters/mq/queue"
	workerpool "github.com/okian/boutstats/internal/adapters/mq/worker"
	"github.com/okian/boutstats/internal/adapters/repository"
	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/internal/domain/dedupe"
	"github.com/okian/boutstats/internal/domain/model"
	"github.com/okian/boutstats/pkg/logger"
	"github.com/okian/boutstats/pkg/metrics"
)

const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 500_000
)

// Service implements the API dependencies for bout analytics.
type Service struct {
	mu sync.RWMutex

	store   *repository.ShardedStore
	deduper dedupe.Deduper
	engine  *analytics.Engine
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool

	workerCount      int
	queueSize        int
	dedupeSize       int
	shardCount       int
	maxEventsPerBout int
	engineOpts       []analytics.Option

	started bool
	logger  logger.Logger
}

// New constructs a Service. Bouts can be registered and analyzed right away;
// Start adds background recomputation.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	var storeOpts []repository.Option
	if s.shardCount > 0 {
		storeOpts = append(storeOpts, repository.WithShardCount(s.shardCount))
	}
	if s.maxEventsPerBout > 0 {
		storeOpts = append(storeOpts, repository.WithMaxEventsPerBout(s.maxEventsPerBout))
	}
	s.store = repository.NewShardedStore(storeOpts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.engine = analytics.New(s.engineOpts...)
	return s
}

// Start creates the recompute queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting bout analytics service...")

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store, s.engine)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "bout analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("precision", s.engine.Precision()),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping bout analytics service...")
	err := s.pool.Shutdown(ctx)
	s.queue = nil
	s.pool = nil
	s.started = false
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "bout analytics service stopped")
	return nil
}

// RegisterBout stores a new bout. An empty BoutID is replaced by a random UUID.
func (s *Service) RegisterBout(ctx context.Context, bout model.Bout) (model.Bout, error) {
	if err := analytics.ValidateBout(bout); err != nil {
		return model.Bout{}, err
	}
	if bout.BoutID == "" {
		bout.BoutID = uuid.NewString()
	}
	if err := s.store.CreateBout(ctx, bout); err != nil {
		return model.Bout{}, fmt.Errorf("register bout: %w", err)
	}
	metrics.RecordBoutRegistered()
	s.logger.Debug(ctx, "bout registered",
		logger.String("bout_id", bout.BoutID),
		logger.Float64("duration_seconds", bout.DurationSeconds),
	)
	return bout, nil
}

// Bout returns the metadata of a registered bout.
func (s *Service) Bout(ctx context.Context, boutID string) (model.Bout, error) {
	return s.store.Bout(ctx, boutID)
}

// SubmitEvent validates and appends an event to a bout's log, then schedules a
// recompute. Events are deduplicated per bout by EventID; an empty EventID is
// replaced by a random UUID.
func (s *Service) SubmitEvent(ctx context.Context, boutID string, ev model.MatchEvent) (model.Submission, error) {
	bout, err := s.store.Bout(ctx, boutID)
	if err != nil {
		metrics.RecordEventRejected("unknown_bout")
		return model.Submission{}, err
	}
	if err := analytics.ValidateEvent(bout, ev); err != nil {
		metrics.RecordEventRejected("invalid")
		return model.Submission{}, err
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}

	key := dedupe.Key{BoutID: boutID, EventID: ev.EventID}
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event detected, skipping",
			logger.String("bout_id", boutID),
			logger.String("event_id", ev.EventID),
		)
		return model.Submission{EventID: ev.EventID, Duplicate: true}, nil
	}

	version, err := s.store.AppendEvent(ctx, boutID, ev)
	if err != nil {
		s.deduper.Unrecord(ctx, key)
		reason := "store"
		if errors.Is(err, repository.ErrEventLimit) {
			reason = "event_limit"
		}
		metrics.RecordEventRejected(reason)
		return model.Submission{}, fmt.Errorf("submit event: %w", err)
	}
	metrics.RecordEventIngested()

	res := model.Submission{EventID: ev.EventID, Version: version}
	res.Queued = s.enqueue(ctx, eventqueue.Job{BoutID: boutID, Version: version})
	return res, nil
}

func (s *Service) enqueue(ctx context.Context, job eventqueue.Job) bool {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q == nil {
		return false
	}
	if err := q.Enqueue(ctx, job); err != nil {
		s.logger.Debug(ctx, "recompute not queued",
			logger.String("bout_id", job.BoutID),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Analytics returns the statistics for a bout's current event log. A cached
// result is used when it matches the latest version; otherwise the result is
// computed here and cached.
func (s *Service) Analytics(ctx context.Context, boutID string) (model.AnalyticsResult, error) {
	cached, err := s.store.Result(ctx, boutID)
	switch {
	case err == nil && cached.Current:
		metrics.RecordCacheLookup(true)
		return cached.Result, nil
	case errors.Is(err, repository.ErrNotFound):
		return model.AnalyticsResult{}, err
	}
	metrics.RecordCacheLookup(false)

	snap, err := s.store.Snapshot(ctx, boutID)
	if err != nil {
		return model.AnalyticsResult{}, err
	}
	res, err := s.analyze(snap.Bout, snap.Events)
	if err != nil {
		return model.AnalyticsResult{}, err
	}
	if _, err := s.store.SaveResult(ctx, boutID, snap.Version, res); err != nil {
		s.logger.Warn(ctx, "could not cache result",
			logger.String("bout_id", boutID),
			logger.Error(err),
		)
	}
	return res, nil
}

// Compute analyzes a bout and its events without storing anything.
func (s *Service) Compute(_ context.Context, bout model.Bout, events []model.MatchEvent) (model.AnalyticsResult, error) {
	return s.analyze(bout, events)
}

func (s *Service) analyze(bout model.Bout, events []model.MatchEvent) (model.AnalyticsResult, error) {
	start := time.Now()
	res, err := s.engine.Analyze(bout, events)
	latency := float64(time.Since(start).Microseconds()) / 1000

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeInvalid
	case res.Inconsistent:
		outcome = metrics.OutcomeInconsistent
	}
	metrics.RecordAnalysis(outcome, len(events), latency)
	return res, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"dedupeEntries":    s.deduper.Size(),
		"totalBouts":       s.store.Count(ctx),
		"percentPrecision": s.engine.Precision(),
		"zeroLengthLeads":  s.engine.ZeroLengthLeads(),
		"bounceBackPolicy": s.engine.BounceBackPolicy().String(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["processedJobs"] = s.pool.Processed()
	}
	return stats
}
