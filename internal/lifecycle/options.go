package lifecycle

import (
	"time"

	"github.com/mj1618/uisync/internal/platform"
	"go.uber.org/zap"
)

// DefaultSampleInterval is how often the sampler queries the oracle.
const DefaultSampleInterval = 50 * time.Millisecond

type options struct {
	logger     *zap.Logger
	initial    platform.ScreenHandle
	interval   time.Duration
	screenWait time.Duration
}

// Option configures a Tracker created by New.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInitialScreen seeds the stack with the screen the session starts on.
func WithInitialScreen(h platform.ScreenHandle) Option {
	return func(o *options) {
		o.initial = h
	}
}

// WithSampleInterval overrides the sampler period. Non-positive values
// keep the default.
func WithSampleInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithScreenWait bounds how long Current(true) waits for a first screen.
// Zero waits indefinitely.
func WithScreenWait(d time.Duration) Option {
	return func(o *options) {
		o.screenWait = d
	}
}
