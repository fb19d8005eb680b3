// Package lifecycle tracks which top-level screen is in the foreground of a
// UI the engine can only observe by polling.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
)

// Oracle reports the most recently shown screen. platform.Introspector
// satisfies it.
type Oracle interface {
	LastShownScreen() (platform.ScreenHandle, error)
}

// Tracker maintains the screen stack. A background sampler started by Start
// races the driver goroutine; every stack access goes through mu.
type Tracker struct {
	oracle     Oracle
	sleeper    *sleeper.Sleeper
	logger     *zap.Logger
	interval   time.Duration
	screenWait time.Duration

	mu    sync.Mutex
	stack Stack

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New returns a Tracker. The sampler is not running until Start is called.
func New(oracle Oracle, s *sleeper.Sleeper, opts ...Option) *Tracker {
	o := options{interval: DefaultSampleInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if s == nil {
		s = sleeper.New(nil)
	}
	t := &Tracker{
		oracle:     oracle,
		sleeper:    s,
		logger:     o.logger.Named("lifecycle"),
		interval:   o.interval,
		screenWait: o.screenWait,
	}
	if o.initial != nil {
		if screen, ok := o.initial.Resolve(); ok && !screen.Finishing {
			t.stack.Push(o.initial)
		}
	}
	return t
}

// Start launches the background sampler. Calling Start more than once has
// no further effect.
func (t *Tracker) Start() {
	t.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		t.cancel = cancel
		t.done = make(chan struct{})
		go t.run(ctx)
	})
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	t.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sample()
		}
	}
}

// Close stops the sampler and waits for it to exit.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		if t.cancel == nil {
			return
		}
		t.cancel()
		<-t.done
	})
}

// Sample runs one sampler tick: query the oracle and fold the answer into
// the stack. Oracle errors and gone handles leave the stack unchanged.
func (t *Tracker) Sample() {
	h, err := t.oracle.LastShownScreen()
	if err != nil {
		t.logger.Debug("oracle query failed", zap.Error(err))
		return
	}
	if h == nil {
		return
	}
	screen, ok := h.Resolve()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe(h, screen)
}

// observe applies one observation. The caller must hold t.mu.
func (t *Tracker) observe(h platform.ScreenHandle, screen model.Screen) {
	id := h.ID()
	if screen.Finishing {
		if t.stack.Remove(id) {
			t.logger.Debug("screen finishing, evicted", zap.String("screen", id))
		}
		return
	}
	if t.stack.TopID() == id {
		return
	}
	moved := t.stack.Contains(id)
	t.stack.Push(h)
	t.logger.Debug("screen foregrounded",
		zap.String("screen", id),
		zap.String("type", screen.Type),
		zap.Bool("moved", moved),
		zap.Int("depth", t.stack.Len()),
	)
}

// Current returns the foreground screen. Gone entries are pruned first.
// With mustWait and an empty stack it polls the oracle at the mini interval
// until a screen appears or the configured screen wait elapses.
func (t *Tracker) Current(mustWait bool) (model.Screen, bool) {
	var deadline time.Time
	if t.screenWait > 0 {
		deadline = t.sleeper.Now().Add(t.screenWait)
	}
	for {
		if screen, ok := t.top(); ok {
			return screen, true
		}
		if !mustWait {
			return model.Screen{}, false
		}
		if screen, ok := t.adoptLastShown(); ok {
			return screen, true
		}
		if !deadline.IsZero() && !t.sleeper.Now().Before(deadline) {
			t.logger.Debug("no screen became available", zap.Duration("waited", t.screenWait))
			return model.Screen{}, false
		}
		t.sleeper.SleepMini()
	}
}

func (t *Tracker) top() (model.Screen, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := t.stack.Prune(); n > 0 {
		t.logger.Debug("pruned gone screens", zap.Int("count", n))
	}
	for {
		h, ok := t.stack.Top()
		if !ok {
			return model.Screen{}, false
		}
		screen, ok := h.Resolve()
		if !ok {
			t.stack.Remove(h.ID())
			continue
		}
		if screen.Finishing {
			t.stack.Remove(h.ID())
			t.logger.Debug("screen finishing, evicted", zap.String("screen", h.ID()))
			continue
		}
		return screen, true
	}
}

// adoptLastShown asks the oracle directly and pushes a live, non-finishing
// answer.
func (t *Tracker) adoptLastShown() (model.Screen, bool) {
	h, err := t.oracle.LastShownScreen()
	if err != nil || h == nil {
		return model.Screen{}, false
	}
	screen, ok := h.Resolve()
	if !ok || screen.Finishing {
		return model.Screen{}, false
	}
	t.mu.Lock()
	t.stack.Push(h)
	t.mu.Unlock()
	return screen, true
}

// IsEmpty reports whether the stack holds no screens.
func (t *Tracker) IsEmpty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.Len() == 0
}

// Push places h on top of the stack.
func (t *Tracker) Push(h platform.ScreenHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stack.Push(h)
}

// Remove drops the screen with the given identity.
func (t *Tracker) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.Remove(id)
}

// Pop removes the top screen, as a back navigation would.
func (t *Tracker) Pop() (platform.ScreenHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.Pop()
}

// IDs returns the identities on the stack, bottom first.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.IDs()
}

// Opened returns every screen on the stack that is still alive, bottom first.
func (t *Tracker) Opened() []model.Screen {
	t.mu.Lock()
	handles := t.stack.Handles()
	t.mu.Unlock()

	var screens []model.Screen
	for _, h := range handles {
		if s, ok := h.Resolve(); ok {
			screens = append(screens, s)
		}
	}
	return screens
}

// Clear empties the stack.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stack.Clear()
}
