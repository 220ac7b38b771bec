// Package config defines service configuration and its loader.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the recompute job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the number of remembered (bout, event) ids.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the bout store.
	ShardCount int `koanf:"shard_count"`

	// MaxEventsPerBout caps the event log of a single bout.
	MaxEventsPerBout int `koanf:"max_events_per_bout"`

	// PercentPrecision is the number of decimal places of time-leading percentages (0..4).
	PercentPrecision int `koanf:"percent_precision"`

	// CountZeroLengthLeads makes same-timestamp leads count as lead changes.
	CountZeroLengthLeads bool `koanf:"count_zero_length_leads"`

	// BounceBackPolicy is "deficit_events" or "new_deficit_only".
	BounceBackPolicy string `koanf:"bounce_back_policy"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           500_000,
		ShardCount:           16,
		MaxEventsPerBout:     5_000,
		PercentPrecision:     0,
		CountZeroLengthLeads: true,
		BounceBackPolicy:     "deficit_events",
	}
}
