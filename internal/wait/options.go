package wait

import (
	"time"

	"go.uber.org/zap"
)

// Default timeouts applied when a wait is given a zero timeout.
const (
	DefaultSmallTimeout = 10 * time.Second
	DefaultLargeTimeout = 20 * time.Second
)

// overlayCloseGrace is how long WaitForOverlayClose first waits for the
// overlay to appear at all.
const overlayCloseGrace = time.Second

// overlayClosePoll is the poll interval while waiting for an overlay to close.
const overlayClosePoll = 200 * time.Millisecond

type options struct {
	logger       *zap.Logger
	smallTimeout time.Duration
	largeTimeout time.Duration
}

// Option configures a Waiter created by New.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTimeouts sets the small and large default timeouts. Non-positive
// values keep the defaults.
func WithTimeouts(small, large time.Duration) Option {
	return func(o *options) {
		if small > 0 {
			o.smallTimeout = small
		}
		if large > 0 {
			o.largeTimeout = large
		}
	}
}
