// Package scene is a scripted platform backend. A scene file describes the
// screens, dialogs, and widget trees of an application over time; the
// backend replays it against a clock so the engine can be driven end to end
// without a device.
package scene

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScene is returned for scene files that fail validation.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the root of a scene file.
type Scene struct {
	Display  Display   `yaml:"display"`
	Screens  []Screen  `yaml:"screens"`
	Overlays []Overlay `yaml:"overlays,omitempty"`

	// FailUntil makes every introspection call fail until this offset.
	FailUntil time.Duration `yaml:"fail_until,omitempty"`
}

// Display is the simulated display geometry.
type Display struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Screen is a top-level screen and the window it draws.
type Screen struct {
	ID          string        `yaml:"id"`
	Type        string        `yaml:"type"`
	ShownAt     time.Duration `yaml:"shown_at,omitempty"`
	FinishingAt time.Duration `yaml:"finishing_at,omitempty"`
	GoneAt      time.Duration `yaml:"gone_at,omitempty"`
	Root        *Node         `yaml:"root"`
}

// Overlay is a window drawn on behalf of a screen. Dialogs are overlay roots
// that compete for focus; popups are plain roots that are always read.
type Overlay struct {
	Owner    string        `yaml:"owner"`
	Kind     string        `yaml:"kind,omitempty"` // dialog (default) or popup
	ShownAt  time.Duration `yaml:"shown_at,omitempty"`
	HiddenAt time.Duration `yaml:"hidden_at,omitempty"`
	Root     *Node         `yaml:"root"`
}

// Node is one widget in a scene tree.
type Node struct {
	ID         string        `yaml:"id"`
	ResourceID string        `yaml:"resource_id,omitempty"`
	Type       string        `yaml:"type"`
	Supertypes []string      `yaml:"supertypes,omitempty"`
	Text       string        `yaml:"text,omitempty"`
	Label      string        `yaml:"label,omitempty"`
	Hint       string        `yaml:"hint,omitempty"`
	Error      string        `yaml:"error,omitempty"`
	Bounds     [4]int        `yaml:"bounds"`
	Kind       string        `yaml:"kind,omitempty"` // scrollable or plain; inferred from type when empty
	Hidden     bool          `yaml:"hidden,omitempty"`
	AppearsAt  time.Duration `yaml:"appears_at,omitempty"`
	RemovedAt  time.Duration `yaml:"removed_at,omitempty"`
	Children   []*Node       `yaml:"children,omitempty"`
}

const (
	overlayDialog = "dialog"
	overlayPopup  = "popup"

	defaultDisplayWidth  = 1080
	defaultDisplayHeight = 1920
)

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scene YAML.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks identities and references and fills display defaults.
func (s *Scene) Validate() error {
	if s.Display.Width <= 0 {
		s.Display.Width = defaultDisplayWidth
	}
	if s.Display.Height <= 0 {
		s.Display.Height = defaultDisplayHeight
	}

	ids := map[string]bool{}
	screens := map[string]bool{}
	for i := range s.Screens {
		sc := &s.Screens[i]
		if sc.ID == "" {
			return fmt.Errorf("%w: screen %d has no id", ErrInvalidScene, i)
		}
		if screens[sc.ID] {
			return fmt.Errorf("%w: duplicate screen id %q", ErrInvalidScene, sc.ID)
		}
		screens[sc.ID] = true
		if sc.Type == "" {
			sc.Type = sc.ID
		}
		if sc.Root == nil {
			sc.Root = &Node{Type: "DecorView"}
		}
		if sc.Root.ID == "" {
			sc.Root.ID = sc.ID + "/root"
		}
		if sc.GoneAt != 0 && sc.GoneAt <= sc.ShownAt {
			return fmt.Errorf("%w: screen %q is gone before it is shown", ErrInvalidScene, sc.ID)
		}
		if err := collectIDs(sc.Root, ids); err != nil {
			return err
		}
	}

	for i := range s.Overlays {
		ov := &s.Overlays[i]
		if !screens[ov.Owner] {
			return fmt.Errorf("%w: overlay %d has unknown owner %q", ErrInvalidScene, i, ov.Owner)
		}
		switch ov.Kind {
		case "":
			ov.Kind = overlayDialog
		case overlayDialog, overlayPopup:
		default:
			return fmt.Errorf("%w: overlay %d has unknown kind %q", ErrInvalidScene, i, ov.Kind)
		}
		if ov.Root == nil {
			return fmt.Errorf("%w: overlay %d has no root", ErrInvalidScene, i)
		}
		if ov.Root.ID == "" {
			ov.Root.ID = fmt.Sprintf("%s/overlay-%d", ov.Owner, i)
		}
		if err := collectIDs(ov.Root, ids); err != nil {
			return err
		}
	}
	return nil
}

// collectIDs walks a scene tree, assigning generated identities to nodes
// without one and rejecting duplicates.
func collectIDs(root *Node, ids map[string]bool) error {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Type == "" {
			n.Type = "View"
		}
		for i, c := range n.Children {
			if c == nil {
				return fmt.Errorf("%w: nil child under %q", ErrInvalidScene, n.ID)
			}
			if c.ID == "" {
				c.ID = fmt.Sprintf("%s/%d", n.ID, i)
			}
			stack = append(stack, c)
		}
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidScene, n.ID)
		}
		ids[n.ID] = true
		switch n.Kind {
		case "", string(model.KindScrollable), "plain":
		default:
			return fmt.Errorf("%w: node %q has unknown kind %q", ErrInvalidScene, n.ID, n.Kind)
		}
	}
	return nil
}

func (n *Node) kind() model.ContainerKind {
	switch n.Kind {
	case string(model.KindScrollable):
		return model.KindScrollable
	case "plain":
		return model.KindPlain
	}
	return model.KindForType(n.Type, n.Supertypes)
}

func (n *Node) presentAt(t time.Duration) bool {
	if t < n.AppearsAt {
		return false
	}
	return n.RemovedAt == 0 || t < n.RemovedAt
}
