package driver

import (
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	clock   sleeper.Clock
	sampler bool
	session string
}

// Option configures a Driver created by New.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock sets the clock used for pauses and deadlines.
func WithClock(c sleeper.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithoutSampler disables the background lifecycle sampler. The screen
// stack is then sampled on the calling goroutine whenever the current
// screen is read, which keeps runs on a fake clock deterministic.
func WithoutSampler() Option {
	return func(o *options) {
		o.sampler = false
	}
}

// WithSession sets the session identifier instead of generating one.
func WithSession(id string) Option {
	return func(o *options) {
		o.session = id
	}
}
