package platform

import "github.com/mj1618/uisync/internal/model"

// ScreenHandle is a weak reference to a screen. Resolve reports false once
// the platform has released the screen; callers treat that as absence.
type ScreenHandle interface {
	// ID returns the screen identity. It stays valid after the screen is gone.
	ID() string

	// Resolve returns the screen's current state, or false if it is gone.
	Resolve() (model.Screen, bool)
}

// Introspector reads the live UI of a process the engine does not own.
// Every method may return nothing; absence is a normal outcome.
type Introspector interface {
	// LiveRoots returns the currently live top-level roots, each with its
	// widget subtree and parent links set.
	LiveRoots() ([]*model.Node, error)

	// LastShownScreen returns the most recently shown screen, or nil if the
	// platform cannot tell.
	LastShownScreen() (ScreenHandle, error)

	// DisplayHeight returns the height of the display hosting the screen.
	DisplayHeight(screen model.Screen) (int, error)
}

// Scroller advances scrollable content by one page.
type Scroller interface {
	// ScrollStep scrolls one page in the given direction and reports
	// whether more content may remain.
	ScrollStep(dir Direction) bool
}
