package repository

// Option applies a configuration option to the ShardedStore.
type Option func(*ShardedStore)

// WithShardCount sets the number of independently locked shards.
func WithShardCount(n int) Option {
	return func(s *ShardedStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMaxEventsPerBout caps the event log of each bout.
func WithMaxEventsPerBout(n int) Option {
	return func(s *ShardedStore) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}
