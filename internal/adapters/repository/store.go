// Package repository holds bouts, their event logs and cached analytics.
package repository

import (
	"context"

	"github.com/okian/boutstats/internal/domain/model"
)

// Snapshot is an immutable copy of a bout and its event log at Version.
// Events are in submission order.
type Snapshot struct {
	Bout    model.Bout
	Events  []model.MatchEvent
	Version uint64
}

// Cached is a previously computed result. Current reports whether it was
// computed from the latest version of the event log.
type Cached struct {
	Result  model.AnalyticsResult
	Version uint64
	Current bool
}

// Store provides read/write access to bouts.
type Store interface {
	// CreateBout registers a bout. Returns ErrAlreadyExists for a known id.
	CreateBout(ctx context.Context, bout model.Bout) error

	// AppendEvent adds an event to the bout's log and returns the new version.
	// Returns ErrNotFound for unknown bouts and ErrEventLimit when full.
	AppendEvent(ctx context.Context, boutID string, ev model.MatchEvent) (uint64, error)

	// Bout returns the bout metadata without its events.
	Bout(ctx context.Context, boutID string) (model.Bout, error)

	// Snapshot returns a copy of the bout and its events.
	Snapshot(ctx context.Context, boutID string) (Snapshot, error)

	// SaveResult caches res if version is still the latest; it reports
	// whether the result was stored.
	SaveResult(ctx context.Context, boutID string, version uint64, res model.AnalyticsResult) (bool, error)

	// Result returns the cached result. Returns ErrNotFound for unknown bouts
	// and ErrNoResult if nothing was cached yet.
	Result(ctx context.Context, boutID string) (Cached, error)

	// Count returns the number of bouts.
	Count(ctx context.Context) int
}
