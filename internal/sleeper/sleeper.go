// Package sleeper provides the fixed pause tiers every poll loop is built on,
// plus the clock those loops read deadlines from.
package sleeper

import (
	"sync"
	"time"
)

// Default pause tiers.
const (
	DefaultPause     = 500 * time.Millisecond
	DefaultMiniPause = 300 * time.Millisecond
	DefaultSync      = 50 * time.Millisecond
)

// Clock is the time source for deadlines and pauses.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// System is the wall clock.
var System Clock = systemClock{}

// Sleeper pauses a poll loop for one of three fixed intervals.
type Sleeper struct {
	Clock     Clock
	Pause     time.Duration
	MiniPause time.Duration
	Sync      time.Duration
}

// New returns a Sleeper using the default tiers on the given clock.
// A nil clock means the wall clock.
func New(clock Clock) *Sleeper {
	if clock == nil {
		clock = System
	}
	return &Sleeper{
		Clock:     clock,
		Pause:     DefaultPause,
		MiniPause: DefaultMiniPause,
		Sync:      DefaultSync,
	}
}

// Sleep pauses for the standard interval.
func (s *Sleeper) Sleep() { s.Clock.Sleep(s.Pause) }

// SleepMini pauses for the short interval.
func (s *Sleeper) SleepMini() { s.Clock.Sleep(s.MiniPause) }

// SleepSync pauses for the lifecycle sampling interval.
func (s *Sleeper) SleepSync() { s.Clock.Sleep(s.Sync) }

// SleepFor pauses for d.
func (s *Sleeper) SleepFor(d time.Duration) { s.Clock.Sleep(d) }

// Now reports the current time on the sleeper's clock.
func (s *Sleeper) Now() time.Time { return s.Clock.Now() }

// FakeClock is a manual clock whose Sleep advances Now instantly.
// It is safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d without blocking.
func (c *FakeClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
