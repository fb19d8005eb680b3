// Package driver is the engine facade used by action and assertion code:
// it wires the lifecycle tracker, extractor, searcher and waiter over one
// platform provider.
package driver

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/uisync/internal/condition"
	"github.com/mj1618/uisync/internal/config"
	"github.com/mj1618/uisync/internal/extract"
	"github.com/mj1618/uisync/internal/lifecycle"
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/render"
	"github.com/mj1618/uisync/internal/search"
	"github.com/mj1618/uisync/internal/sleeper"
	"github.com/mj1618/uisync/internal/wait"
	"go.uber.org/zap"
)

// defaultDisplayWidth is reported when the backend cannot tell.
const defaultDisplayWidth = 1080

// Driver is not safe for concurrent use; callers serialise access. The
// lifecycle sampler it starts runs on its own goroutine.
type Driver struct {
	cfg      config.Config
	provider *platform.Provider
	sleeper  *sleeper.Sleeper
	logger   *zap.Logger
	session  string

	tracker    *lifecycle.Tracker
	screens    screenSource
	extractor  *extract.Extractor
	searcher   *search.Searcher
	waiter     *wait.Waiter
	conditions *condition.Cache
}

// New builds a Driver over provider and starts the lifecycle sampler.
func New(provider *platform.Provider, cfg config.Config, opts ...Option) (*Driver, error) {
	if provider == nil || provider.Introspector == nil {
		return nil, platform.ErrNoProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{sampler: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.session == "" {
		o.session = uuid.NewString()
	}

	sl := sleeper.New(o.clock)
	sl.Pause = cfg.Pause
	sl.MiniPause = cfg.MiniPause
	sl.Sync = cfg.SyncInterval

	logger := o.logger.With(zap.String("session", o.session))
	port := provider.Introspector

	d := &Driver{
		cfg:        cfg,
		provider:   provider,
		sleeper:    sl,
		logger:     logger,
		session:    o.session,
		conditions: condition.NewCache(),
	}
	d.tracker = lifecycle.New(port, sl,
		lifecycle.WithLogger(logger),
		lifecycle.WithSampleInterval(cfg.SyncInterval),
		lifecycle.WithScreenWait(cfg.ScreenWait),
	)
	d.screens = d.tracker
	if !o.sampler {
		d.screens = inlineSampler{d.tracker}
	}
	d.extractor = extract.New(port, d.screens, sl.Clock, logger)
	d.searcher = search.New(d.extractor, provider.Scroller, sl,
		search.WithLogger(logger),
		search.WithScroll(cfg.Scroll),
		search.WithSearchTimeout(cfg.SearchTimeout),
	)
	d.waiter = wait.New(d.screens, d.extractor, port, d.searcher, sl,
		wait.WithLogger(logger),
		wait.WithTimeouts(cfg.SmallTimeout, cfg.LargeTimeout),
	)

	if o.sampler {
		d.tracker.Start()
	}
	logger.Debug("driver started", zap.String("backend", provider.Name), zap.Bool("sampler", o.sampler))
	return d, nil
}

// Close stops the sampler and releases the provider.
func (d *Driver) Close() error {
	d.tracker.Close()
	if d.provider.Close != nil {
		if err := d.provider.Close(); err != nil {
			return fmt.Errorf("close backend %s: %w", d.provider.Name, err)
		}
	}
	return nil
}

// Session returns the identifier attached to every log entry.
func (d *Driver) Session() string { return d.session }

// Config returns the settings the driver was built with.
func (d *Driver) Config() config.Config { return d.cfg }

// Backend returns the provider name.
func (d *Driver) Backend() string { return d.provider.Name }

// CurrentScreen pauses, then returns the foreground screen, waiting for one
// to appear if the stack is empty.
func (d *Driver) CurrentScreen() (model.Screen, bool) {
	d.sleeper.Sleep()
	return d.screens.Current(true)
}

// PeekScreen returns the foreground screen without pausing or waiting.
func (d *Driver) PeekScreen() (model.Screen, bool) {
	return d.screens.Current(false)
}

// Screens returns the live screens on the stack, bottom first.
func (d *Driver) Screens() []model.Screen {
	d.screens.Current(false)
	return d.tracker.Opened()
}

// StackIsEmpty reports whether no live screen is tracked.
func (d *Driver) StackIsEmpty() bool {
	d.screens.Current(false)
	return d.tracker.IsEmpty()
}

// PopScreen drops the top of the stack, as a back navigation would, and
// returns the screen that was removed.
func (d *Driver) PopScreen() (model.Screen, bool) {
	h, ok := d.tracker.Pop()
	if !ok {
		return model.Screen{}, false
	}
	if s, ok := h.Resolve(); ok {
		return s, true
	}
	return model.Screen{ID: h.ID()}, true
}

// AllNodes extracts the current tree.
func (d *Driver) AllNodes(onlyVisible bool) model.Snapshot {
	return d.extractor.AllNodes(onlyVisible)
}

// NodesOfType extracts the sufficiently shown nodes of typ.
func (d *Driver) NodesOfType(typ string) model.Snapshot {
	return d.extractor.NodesOfType(typ, nil)
}

// SufficientlyShown applies the visibility rule to n.
func (d *Driver) SufficientlyShown(n *model.Node) bool {
	return d.extractor.SufficientlyShown(n)
}

// Display returns the display size of the foreground screen.
func (d *Driver) Display() (width, height int, err error) {
	screen, _ := d.screens.Current(false)
	height, err = d.provider.Introspector.DisplayHeight(screen)
	if err != nil {
		return 0, 0, err
	}
	width = defaultDisplayWidth
	if w, ok := d.provider.Introspector.(interface{ DisplayWidth() int }); ok {
		width = w.DisplayWidth()
	}
	return width, height, nil
}

// IsOverlayOpen reports whether a dialog or popup of the foreground screen
// is open.
func (d *Driver) IsOverlayOpen() bool {
	return d.waiter.IsOverlayOpen()
}

// ScrollDown advances scrollable content by one page.
func (d *Driver) ScrollDown() bool {
	return d.searcher.ScrollDown()
}

// Env captures the state conditions are evaluated against.
func (d *Driver) Env() condition.Env {
	screen, ok := d.screens.Current(false)
	return condition.Env{
		Screen:    screen,
		HasScreen: ok,
		Stack:     d.tracker.IDs(),
		Nodes:     d.extractor.AllNodes(false).Nodes,
		Visible:   d.extractor.AllNodes(true).Nodes,
		Overlay:   d.waiter.IsOverlayOpen(),
	}
}

func (d *Driver) or(timeout, fallback time.Duration) time.Duration {
	if timeout <= 0 {
		return fallback
	}
	return timeout
}

// screenSource is satisfied by *lifecycle.Tracker and inlineSampler.
type screenSource interface {
	Current(mustWait bool) (model.Screen, bool)
}

// inlineSampler folds one oracle observation into the stack before each
// read, standing in for the background sampler.
type inlineSampler struct {
	t *lifecycle.Tracker
}

func (s inlineSampler) Current(mustWait bool) (model.Screen, bool) {
	s.t.Sample()
	return s.t.Current(mustWait)
}

// Now reports the time on the driver's clock.
func (d *Driver) Now() time.Time { return d.sleeper.Now() }

// Wireframe renders every node of the foreground at scale, colouring each
// by whether it is sufficiently shown.
func (d *Driver) Wireframe(scale float64, mode render.LabelMode) (*image.RGBA, error) {
	width, height, err := d.Display()
	if err != nil {
		return nil, err
	}
	snap := d.AllNodes(false)
	shown := make(map[string]bool, snap.Len())
	for _, n := range snap.Nodes {
		shown[n.ID] = d.SufficientlyShown(n)
	}
	return render.Wireframe(snap, shown, width, height, scale, mode), nil
}

// SleepFor pauses on the driver's clock.
func (d *Driver) SleepFor(dur time.Duration) { d.sleeper.SleepFor(dur) }
