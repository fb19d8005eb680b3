// Package search finds the Nth distinct node matching a type and text
// pattern across successive snapshots, scrolling between them.
package search

import (
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
)

// Policy decides what happens when a search pass is exhausted.
type Policy int

const (
	// SinglePass scans, scrolls and rescans until scrolling stops making
	// progress, then gives up. The caller owns any outer deadline.
	SinglePass Policy = iota
	// RetryUntilDeadline starts a fresh pass after each exhausted one until
	// the query timeout elapses.
	RetryUntilDeadline
)

func (p Policy) String() string {
	if p == RetryUntilDeadline {
		return "retry-until-deadline"
	}
	return "single-pass"
}

// Query describes one search.
type Query struct {
	Type        string        // Widget type; empty matches every type
	Pattern     string        // Regular expression, or literal text if it does not compile
	Expected    int           // Return the node that brings the distinct match count to exactly this; values below 1 mean 1
	Timeout     time.Duration // Zero means no deadline
	Scroll      bool
	OnlyVisible bool // Also drop nodes the platform reports as not shown
	Policy      Policy
}

// NodeSource supplies snapshots. *extract.Extractor satisfies it.
type NodeSource interface {
	AllNodes(onlyVisible bool) model.Snapshot
	NodesOfType(typ string, root *model.Node) model.Snapshot
}

// Searcher runs queries. It is used from the driver goroutine only.
type Searcher struct {
	nodes         NodeSource
	scroller      platform.Scroller
	sleeper       *sleeper.Sleeper
	logger        *zap.Logger
	scroll        bool
	searchTimeout time.Duration

	matches *MatchSet
	unique  int
}

// New returns a Searcher. A nil scroller disables scrolling.
func New(nodes NodeSource, scroller platform.Scroller, s *sleeper.Sleeper, opts ...Option) *Searcher {
	o := options{scroll: true, searchTimeout: DefaultSearchTimeout}
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
	return &Searcher{
		nodes:         nodes,
		scroller:      scroller,
		sleeper:       s,
		logger:        o.logger.Named("search"),
		scroll:        o.scroll,
		searchTimeout: o.searchTimeout,
		matches:       NewMatchSet(),
	}
}

// SearchFor returns the node whose match brings the distinct match count to
// exactly q.Expected, or nil. The match set is cleared at the start and end
// of every call.
func (s *Searcher) SearchFor(q Query) *model.Node {
	if q.Expected < 1 {
		q.Expected = 1
	}
	pattern := Compile(q.Pattern)
	var deadline time.Time
	if q.Timeout > 0 {
		deadline = s.sleeper.Now().Add(q.Timeout)
	}

	s.matches.Clear()
	for {
		if !deadline.IsZero() && s.sleeper.Now().After(deadline) {
			s.logMatchesFound(pattern, q.Expected)
			return nil
		}
		if n := s.scan(q, pattern); n != nil {
			s.matches.Clear()
			return n
		}
		if q.Scroll && s.ScrollDown() {
			continue
		}
		s.logMatchesFound(pattern, q.Expected)
		if q.Policy != RetryUntilDeadline || deadline.IsZero() {
			return nil
		}
	}
}

// scan pauses, takes one snapshot and feeds it to the match set.
func (s *Searcher) scan(q Query, pattern Pattern) *model.Node {
	s.sleeper.Sleep()
	for _, n := range s.candidates(q.Type, q.OnlyVisible) {
		if s.matches.Observe(n, pattern) == q.Expected {
			return n
		}
	}
	return nil
}

func (s *Searcher) candidates(typ string, onlyVisible bool) []*model.Node {
	nodes := s.nodes.NodesOfType(typ, nil).Nodes
	if onlyVisible {
		nodes = model.FilterShown(nodes)
	}
	return nodes
}

// SearchWithTimeout repeats a single-pass search until it succeeds or the
// search timeout elapses.
func (s *Searcher) SearchWithTimeout(q Query) bool {
	q.Timeout = 0
	q.Policy = SinglePass
	deadline := s.sleeper.Now().Add(s.searchTimeout)
	for s.sleeper.Now().Before(deadline) {
		s.sleeper.Sleep()
		if s.SearchFor(q) != nil {
			return true
		}
	}
	return false
}

// CountUnique adds every shown node of typ to set and returns its size.
func (s *Searcher) CountUnique(set *MatchSet, typ string) int {
	for _, n := range s.candidates(typ, true) {
		set.Add(n)
	}
	s.unique = set.Len()
	return s.unique
}

// IndexReached adds every shown node of typ to set and reports whether the
// set now holds more than index nodes.
func (s *Searcher) IndexReached(set *MatchSet, typ string, index int) bool {
	n := s.CountUnique(set, typ)
	return n > 0 && index < n
}

// Unique returns the distinct count from the last CountUnique call.
func (s *Searcher) Unique() int { return s.unique }

// Visible returns the currently shown nodes of typ.
func (s *Searcher) Visible(typ string) []*model.Node {
	return s.candidates(typ, true)
}

// Contains reports whether a node with n's identity is in the current
// visible tree.
func (s *Searcher) Contains(n *model.Node) bool {
	if n == nil {
		return false
	}
	_, ok := s.nodes.AllNodes(true).Find(n.ID)
	return ok
}

// ScrollDown scrolls one page if scrolling is enabled and reports whether
// the content moved.
func (s *Searcher) ScrollDown() bool {
	if !s.scroll || s.scroller == nil {
		return false
	}
	return s.scroller.ScrollStep(platform.Down)
}

// logMatchesFound records a partial result and clears the match set.
func (s *Searcher) logMatchesFound(p Pattern, expected int) {
	if n := s.matches.Len(); n > 0 {
		s.logger.Debug("fewer matches than expected",
			zap.Int("matches", n),
			zap.Int("expected", expected),
			zap.String("pattern", p.Source),
			zap.Stringer("kind", p.Kind),
		)
	}
	s.matches.Clear()
}
