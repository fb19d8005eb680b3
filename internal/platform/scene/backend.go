package scene

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/sleeper"
)

// errIntrospection is returned while the scene's fail_until window is open.
var errIntrospection = errors.New("scene: introspection unavailable")

// Backend replays a Scene. Time is measured from construction on the
// backend's clock.
type Backend struct {
	scene *Scene
	clock sleeper.Clock
	start time.Time
	index map[string]*Node

	mu      sync.Mutex
	offsets map[string]int
}

// New returns a Backend replaying s. A nil clock means the wall clock.
func New(s *Scene, clock sleeper.Clock) *Backend {
	if clock == nil {
		clock = sleeper.System
	}
	b := &Backend{
		scene:   s,
		clock:   clock,
		start:   clock.Now(),
		index:   map[string]*Node{},
		offsets: map[string]int{},
	}
	for i := range s.Screens {
		b.indexTree(s.Screens[i].Root)
	}
	for i := range s.Overlays {
		b.indexTree(s.Overlays[i].Root)
	}
	return b
}

func (b *Backend) indexTree(root *Node) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.index[n.ID] = n
		stack = append(stack, n.Children...)
	}
}

// Elapsed returns the scene time.
func (b *Backend) Elapsed() time.Duration {
	return b.clock.Now().Sub(b.start)
}

// Offset returns the current scroll offset of a scrollable node.
func (b *Backend) Offset(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offsets[id]
}

func (b *Backend) failing(t time.Duration) bool {
	return t < b.scene.FailUntil
}

func (sc *Screen) aliveAt(t time.Duration) bool {
	return t >= sc.ShownAt && (sc.GoneAt == 0 || t < sc.GoneAt)
}

func (b *Backend) screenByID(id string) *Screen {
	for i := range b.scene.Screens {
		if b.scene.Screens[i].ID == id {
			return &b.scene.Screens[i]
		}
	}
	return nil
}

func (b *Backend) overlayShownAt(ov *Overlay, t time.Duration) bool {
	if t < ov.ShownAt || (ov.HiddenAt != 0 && t >= ov.HiddenAt) {
		return false
	}
	owner := b.screenByID(ov.Owner)
	return owner != nil && owner.aliveAt(t)
}

// LastShownScreen returns the most recently shown screen that is still alive.
func (b *Backend) LastShownScreen() (platform.ScreenHandle, error) {
	t := b.Elapsed()
	if b.failing(t) {
		return nil, errIntrospection
	}
	best := -1
	for i := range b.scene.Screens {
		sc := &b.scene.Screens[i]
		if !sc.aliveAt(t) {
			continue
		}
		if best < 0 || sc.ShownAt >= b.scene.Screens[best].ShownAt {
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}
	return &handle{b: b, screen: &b.scene.Screens[best]}, nil
}

type handle struct {
	b      *Backend
	screen *Screen
}

func (h *handle) ID() string { return h.screen.ID }

func (h *handle) Resolve() (model.Screen, bool) {
	t := h.b.Elapsed()
	if !h.screen.aliveAt(t) {
		return model.Screen{}, false
	}
	return model.Screen{
		ID:        h.screen.ID,
		Type:      h.screen.Type,
		Finishing: h.screen.FinishingAt != 0 && t >= h.screen.FinishingAt,
		RootID:    h.screen.Root.ID,
	}, true
}

type window struct {
	root    *Node
	owner   string
	shownAt time.Duration
	decor   bool
}

// LiveRoots builds the current widget trees. Screens and dialogs are overlay
// roots; the most recently shown of them holds focus.
func (b *Backend) LiveRoots() ([]*model.Node, error) {
	t := b.Elapsed()
	if b.failing(t) {
		return nil, errIntrospection
	}

	var windows []window
	for i := range b.scene.Screens {
		sc := &b.scene.Screens[i]
		if sc.aliveAt(t) {
			windows = append(windows, window{root: sc.Root, owner: sc.ID, shownAt: sc.ShownAt, decor: true})
		}
	}
	for i := range b.scene.Overlays {
		ov := &b.scene.Overlays[i]
		if b.overlayShownAt(ov, t) {
			windows = append(windows, window{root: ov.Root, owner: ov.Owner, shownAt: ov.ShownAt, decor: ov.Kind == overlayDialog})
		}
	}

	focused := -1
	for i, w := range windows {
		if w.decor && (focused < 0 || w.shownAt >= windows[focused].shownAt) {
			focused = i
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	roots := make([]*model.Node, 0, len(windows))
	for i, w := range windows {
		draw := w.shownAt.Milliseconds() + 1
		root := b.build(w.root, t, 0, true, draw)
		root.Owner = w.owner
		root.Focused = i == focused
		if w.decor {
			root.Kind = model.KindOverlayRoot
		}
		model.Link(root)
		roots = append(roots, root)
	}
	return roots, nil
}

// build converts a scene subtree to live nodes. Children of a scrollable
// node are shifted up by its scroll offset. The caller must hold b.mu.
func (b *Backend) build(n *Node, t time.Duration, shift int, parentShown bool, draw int64) *model.Node {
	m := &model.Node{
		ID:         n.ID,
		ResourceID: n.ResourceID,
		Type:       n.Type,
		Supertypes: n.Supertypes,
		Text:       n.Text,
		Label:      n.Label,
		Hint:       n.Hint,
		Error:      n.Error,
		Bounds:     [4]int{n.Bounds[0], n.Bounds[1] - shift, n.Bounds[2], n.Bounds[3]},
		Kind:       n.kind(),
		Shown:      parentShown && !n.Hidden,
		DrawTime:   draw,
	}
	childShift := shift
	if m.Kind == model.KindScrollable {
		childShift += b.offsets[n.ID]
	}
	for _, c := range n.Children {
		if c.presentAt(t) {
			m.Children = append(m.Children, b.build(c, t, childShift, m.Shown, draw))
		}
	}
	return m
}

// DisplayHeight returns the scene's display height for every screen.
func (b *Backend) DisplayHeight(model.Screen) (int, error) {
	if b.failing(b.Elapsed()) {
		return 0, errIntrospection
	}
	return b.scene.Display.Height, nil
}

// DisplayWidth returns the scene's display width.
func (b *Backend) DisplayWidth() int {
	return b.scene.Display.Width
}

// ScrollStep scrolls the freshest shown scrollable container in the
// foreground by its height less one pixel. It reports false when the
// container could not move further.
func (b *Backend) ScrollStep(dir platform.Direction) bool {
	roots, err := b.LiveRoots()
	if err != nil {
		return false
	}

	var decor []*model.Node
	var candidates []*model.Node
	collect := func(root *model.Node) {
		for _, n := range append(model.Descendants(root), root) {
			if n.Kind != model.KindScrollable || !n.Shown {
				continue
			}
			if c := n.CenterY(); c < 0 || c > float64(b.scene.Display.Height) {
				continue
			}
			candidates = append(candidates, n)
		}
	}
	for _, r := range roots {
		if r.Kind == model.KindOverlayRoot {
			decor = append(decor, r)
			continue
		}
		collect(r)
	}
	if top := model.TopmostOverlayRoot(decor); top != nil {
		collect(top)
	}

	view := model.FreshestNode(candidates)
	if view == nil {
		return false
	}
	src, ok := b.index[view.ID]
	if !ok {
		return false
	}

	amount := view.Bounds[3] - 1
	if dir == platform.Up {
		amount = -amount
	}
	t := b.Elapsed()
	maxOffset := contentBottom(src, t) - (src.Bounds[1] + src.Bounds[3])
	if maxOffset < 0 {
		maxOffset = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.offsets[src.ID]
	next := prev + amount
	if next < 0 {
		next = 0
	}
	if next > maxOffset {
		next = maxOffset
	}
	b.offsets[src.ID] = next
	return next != prev
}

// contentBottom returns the lowest unscrolled bottom edge among the present
// content of a scrollable node. Nested scrollables count by their own bounds.
func contentBottom(n *Node, t time.Duration) int {
	bottom := n.Bounds[1] + n.Bounds[3]
	stack := append([]*Node(nil), n.Children...)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !c.presentAt(t) {
			continue
		}
		if cb := c.Bounds[1] + c.Bounds[3]; cb > bottom {
			bottom = cb
		}
		if c.kind() != model.KindScrollable {
			stack = append(stack, c.Children...)
		}
	}
	return bottom
}

func newProvider(opts platform.Options) (*platform.Provider, error) {
	var (
		s   *Scene
		err error
	)
	switch {
	case len(opts.Data) > 0:
		s, err = Parse(opts.Data)
	case opts.Source != "":
		s, err = Load(opts.Source)
	default:
		return nil, fmt.Errorf("%w: no scene file given", ErrInvalidScene)
	}
	if err != nil {
		return nil, err
	}
	b := New(s, opts.Clock)
	return &platform.Provider{
		Name:         "scene",
		Introspector: b,
		Scroller:     b,
	}, nil
}

func init() {
	platform.Register("scene", newProvider)
}
