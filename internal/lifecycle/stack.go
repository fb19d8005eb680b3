package lifecycle

import "github.com/mj1618/uisync/internal/platform"

// Stack is the ordered history of foregrounded screens, most recent last.
// A parallel slice of identities keeps duplicate detection cheap. Stack is
// not safe for concurrent use; Tracker guards it.
type Stack struct {
	handles []platform.ScreenHandle
	ids     []string
}

// Push places h on top. If its identity is already present, the stale entry
// is removed first so no identity appears twice.
func (s *Stack) Push(h platform.ScreenHandle) {
	if h == nil {
		return
	}
	s.Remove(h.ID())
	s.handles = append(s.handles, h)
	s.ids = append(s.ids, h.ID())
}

// Remove drops the entry with the given identity and reports whether it
// was present.
func (s *Stack) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

func (s *Stack) removeAt(i int) {
	s.handles = append(s.handles[:i], s.handles[i+1:]...)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
}

func (s *Stack) index(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Top returns the most recent entry.
func (s *Stack) Top() (platform.ScreenHandle, bool) {
	if len(s.handles) == 0 {
		return nil, false
	}
	return s.handles[len(s.handles)-1], true
}

// TopID returns the identity of the most recent entry, or "".
func (s *Stack) TopID() string {
	if len(s.ids) == 0 {
		return ""
	}
	return s.ids[len(s.ids)-1]
}

// Pop removes and returns the most recent entry.
func (s *Stack) Pop() (platform.ScreenHandle, bool) {
	h, ok := s.Top()
	if ok {
		s.removeAt(len(s.handles) - 1)
	}
	return h, ok
}

// Contains reports whether the identity is on the stack.
func (s *Stack) Contains(id string) bool { return s.index(id) >= 0 }

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.handles) }

// IDs returns a copy of the identities, bottom first.
func (s *Stack) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Handles returns a copy of the entries, bottom first.
func (s *Stack) Handles() []platform.ScreenHandle {
	return append([]platform.ScreenHandle(nil), s.handles...)
}

// Prune drops every entry whose handle no longer resolves and returns how
// many were dropped.
func (s *Stack) Prune() int {
	dropped := 0
	for i := len(s.handles) - 1; i >= 0; i-- {
		if _, ok := s.handles[i].Resolve(); !ok {
			s.removeAt(i)
			dropped++
		}
	}
	return dropped
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.handles = nil
	s.ids = nil
}
