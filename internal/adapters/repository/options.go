package repository

import (
	"github.com/ringcast/ringcast/pkg/retry"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxOpenConns caps the number of open database connections.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithRetryConfig sets the backoff policy for transient write failures.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *SQLiteStore) {
		s.retryCfg = cfg
	}
}
