package analytics

// Default engine configuration constants.
const (
	defaultPrecision = 0
	maxPrecision     = 4
)

// BounceBackPolicy selects which SCORE events start a bounce-back measurement.
type BounceBackPolicy uint8

const (
	// DeficitEvents counts every opponent score after which the competitor
	// is behind, whether newly behind or further behind.
	DeficitEvents BounceBackPolicy = iota
	// NewDeficitOnly counts only opponent scores that turn a tie or a lead
	// into a deficit.
	NewDeficitOnly
)

// String returns the config name of the policy.
func (p BounceBackPolicy) String() string {
	if p == NewDeficitOnly {
		return "new_deficit_only"
	}
	return "deficit_events"
}

// ParseBounceBackPolicy maps config strings to a policy. Unknown values yield
// DeficitEvents and ok=false.
func ParseBounceBackPolicy(s string) (BounceBackPolicy, bool) {
	switch s {
	case "", "deficit_events":
		return DeficitEvents, true
	case "new_deficit_only":
		return NewDeficitOnly, true
	default:
		return DeficitEvents, false
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPrecision sets the number of decimal places for time-leading percentages.
// Values outside 0..4 are ignored.
func WithPrecision(places int) Option {
	return func(e *Engine) {
		if places >= 0 && places <= maxPrecision {
			e.precision = int32(places)
		}
	}
}

// WithZeroLengthLeads controls whether zero-length intervals (two SCORE events
// at the same timestamp) take part in lead-change detection.
func WithZeroLengthLeads(enabled bool) Option {
	return func(e *Engine) {
		e.zeroLengthLeads = enabled
	}
}

// WithBounceBackPolicy sets which events start a bounce-back measurement.
func WithBounceBackPolicy(p BounceBackPolicy) Option {
	return func(e *Engine) {
		e.bounceBack = p
	}
}
