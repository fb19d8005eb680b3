package search

import (
	"time"

	"go.uber.org/zap"
)

// DefaultSearchTimeout bounds SearchWithTimeout.
const DefaultSearchTimeout = 5 * time.Second

type options struct {
	logger        *zap.Logger
	scroll        bool
	searchTimeout time.Duration
}

// Option configures a Searcher created by New.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithScroll enables or disables scrolling for every search, overriding
// per-query requests.
func WithScroll(enabled bool) Option {
	return func(o *options) {
		o.scroll = enabled
	}
}

// WithSearchTimeout sets the budget of SearchWithTimeout.
func WithSearchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.searchTimeout = d
		}
	}
}
