package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/okian/boutstats/internal/domain/model"
	"github.com/okian/boutstats/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 16
	defaultMaxEvents  = 5_000
)

type boutState struct {
	bout    model.Bout
	events  []model.MatchEvent
	version uint64

	result        *model.AnalyticsResult
	resultVersion uint64
}

type shard struct {
	mu    sync.RWMutex
	bouts map[string]*boutState
}

// ShardedStore is an in-memory Store partitioned by bout id hash so writers
// to different bouts rarely contend.
type ShardedStore struct {
	shards     []*shard
	shardCount int
	maxEvents  int
	count      atomic.Int64
}

// NewShardedStore creates a store with configuration options.
func NewShardedStore(opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount: defaultShardCount,
		maxEvents:  defaultMaxEvents,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{bouts: make(map[string]*boutState)}
	}
	return s
}

func (s *ShardedStore) shardFor(boutID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(boutID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *ShardedStore) CreateBout(_ context.Context, bout model.Bout) error {
	sh := s.shardFor(bout.BoutID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.bouts[bout.BoutID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, bout.BoutID)
	}
	sh.bouts[bout.BoutID] = &boutState{bout: bout}
	metrics.UpdateBoutsTotal(int(s.count.Add(1)))
	return nil
}

func (s *ShardedStore) AppendEvent(_ context.Context, boutID string, ev model.MatchEvent) (uint64, error) {
	sh := s.shardFor(boutID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.bouts[boutID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, boutID)
	}
	if len(st.events) >= s.maxEvents {
		return st.version, fmt.Errorf("%w: %d events", ErrEventLimit, s.maxEvents)
	}
	st.events = append(st.events, cloneEvent(ev))
	st.version++
	return st.version, nil
}

func (s *ShardedStore) Bout(_ context.Context, boutID string) (model.Bout, error) {
	sh := s.shardFor(boutID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.bouts[boutID]
	if !ok {
		return model.Bout{}, fmt.Errorf("%w: %s", ErrNotFound, boutID)
	}
	return st.bout, nil
}

func (s *ShardedStore) Snapshot(_ context.Context, boutID string) (Snapshot, error) {
	sh := s.shardFor(boutID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.bouts[boutID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, boutID)
	}
	// Stored events are never mutated, so a shallow copy of each one is enough.
	events := make([]model.MatchEvent, len(st.events))
	copy(events, st.events)
	return Snapshot{Bout: st.bout, Events: events, Version: st.version}, nil
}

func (s *ShardedStore) SaveResult(_ context.Context, boutID string, version uint64, res model.AnalyticsResult) (bool, error) {
	sh := s.shardFor(boutID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.bouts[boutID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, boutID)
	}
	if version != st.version || (st.result != nil && st.resultVersion >= version) {
		return false, nil
	}
	r := res
	st.result = &r
	st.resultVersion = version
	return true, nil
}

func (s *ShardedStore) Result(_ context.Context, boutID string) (Cached, error) {
	sh := s.shardFor(boutID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.bouts[boutID]
	if !ok {
		return Cached{}, fmt.Errorf("%w: %s", ErrNotFound, boutID)
	}
	if st.result == nil {
		return Cached{}, fmt.Errorf("%w: %s", ErrNoResult, boutID)
	}
	return Cached{
		Result:  *st.result,
		Version: st.resultVersion,
		Current: st.resultVersion == st.version,
	}, nil
}

func (s *ShardedStore) Count(_ context.Context) int {
	return int(s.count.Load())
}

// cloneEvent detaches optional fields from caller-owned memory.
func cloneEvent(ev model.MatchEvent) model.MatchEvent {
	if ev.ElapsedSeconds != nil {
		ev.ElapsedSeconds = model.Float64(*ev.ElapsedSeconds)
	}
	if ev.ScoreDiffAfter != nil {
		ev.ScoreDiffAfter = model.Int(*ev.ScoreDiffAfter)
	}
	return ev
}
