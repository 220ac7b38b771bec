package analytics

import (
	"errors"
	"fmt"

	"github.com/okian/boutstats/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	// ErrInvalidInput is fatal: no partial result is produced.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInconsistentScoreProgression is informational: the result is still
	// computed from the reported differentials.
	ErrInconsistentScoreProgression = errors.New("inconsistent score progression")
)

// ValidationError describes why a bout or one of its events was rejected.
// Index is the event's position in the submitted slice, or -1 when the
// problem is bout-level or the event was checked on its own.
type ValidationError struct {
	Index   int
	EventID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 && e.EventID != "" {
		return fmt.Sprintf("%s: event %s: %s %s", ErrInvalidInput, e.EventID, e.Field, e.Reason)
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
	}
	if e.EventID != "" {
		return fmt.Sprintf("%s: event %d (%s): %s %s", ErrInvalidInput, e.Index, e.EventID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: event %d: %s %s", ErrInvalidInput, e.Index, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ConsistencyErr returns nil for consistent results, otherwise an error wrapping
// ErrInconsistentScoreProgression that summarizes the first issue.
func ConsistencyErr(res model.AnalyticsResult) error {
	if !res.Inconsistent || len(res.Issues) == 0 {
		return nil
	}
	first := res.Issues[0]
	return fmt.Errorf("%w: %d issue(s), first %s at %.3fs (diff %d -> %d)",
		ErrInconsistentScoreProgression, len(res.Issues), first.Kind, first.Elapsed, first.PrevDiff, first.Diff)
}
