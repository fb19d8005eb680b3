// Package wait re-samples the UI until a condition holds or a deadline
// passes, optionally scrolling between samples.
package wait

import (
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/search"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
)

// ScreenSource reports the foreground screen. *lifecycle.Tracker satisfies it.
type ScreenSource interface {
	Current(mustWait bool) (model.Screen, bool)
}

// RootSource returns the live top-level roots. platform.Introspector
// satisfies it.
type RootSource interface {
	LiveRoots() ([]*model.Node, error)
}

// Waiter runs blocking waits on the driver goroutine. Waits cannot be
// cancelled once started; they end on success or at their deadline.
type Waiter struct {
	screens  ScreenSource
	nodes    search.NodeSource
	roots    RootSource
	searcher *search.Searcher
	sleeper  *sleeper.Sleeper
	logger   *zap.Logger

	smallTimeout time.Duration
	largeTimeout time.Duration
}

// New returns a Waiter.
func New(screens ScreenSource, nodes search.NodeSource, roots RootSource, searcher *search.Searcher, s *sleeper.Sleeper, opts ...Option) *Waiter {
	o := options{smallTimeout: DefaultSmallTimeout, largeTimeout: DefaultLargeTimeout}
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
	return &Waiter{
		screens:      screens,
		nodes:        nodes,
		roots:        roots,
		searcher:     searcher,
		sleeper:      s,
		logger:       o.logger.Named("wait"),
		smallTimeout: o.smallTimeout,
		largeTimeout: o.largeTimeout,
	}
}

// SmallTimeout returns the default for node waits.
func (w *Waiter) SmallTimeout() time.Duration { return w.smallTimeout }

// LargeTimeout returns the default for text waits.
func (w *Waiter) LargeTimeout() time.Duration { return w.largeTimeout }

func (w *Waiter) or(timeout, fallback time.Duration) time.Duration {
	if timeout <= 0 {
		return fallback
	}
	return timeout
}

func (w *Waiter) timedOut(deadline time.Time) bool {
	return w.sleeper.Now().After(deadline)
}

// WaitFor polls cond until it holds or timeout elapses. Each iteration
// checks the deadline, pauses, then evaluates, so a condition that becomes
// true between polls is seen at the next pause boundary.
//
// Under RetryUntilDeadline a BudgetedCondition is called once with the whole
// timeout.
func (w *Waiter) WaitFor(cond Condition, timeout time.Duration, policy search.Policy) bool {
	if cond == nil {
		return false
	}
	if b, ok := cond.(BudgetedCondition); ok && policy == search.RetryUntilDeadline {
		return b.SatisfiedWithin(timeout)
	}
	deadline := w.sleeper.Now().Add(timeout)
	for {
		if w.timedOut(deadline) {
			w.logger.Debug("condition not satisfied", zap.Duration("timeout", timeout))
			return false
		}
		w.sleeper.Sleep()
		if cond.IsSatisfied() {
			return true
		}
	}
}

// WaitForScreen polls at the sync interval until the foreground screen has
// the given identity or type name.
func (w *Waiter) WaitForScreen(name string, timeout time.Duration) bool {
	return w.WaitForScreenFunc(func(s model.Screen) bool { return s.Is(name) }, timeout)
}

// WaitForScreenFunc polls at the sync interval until pred accepts the
// foreground screen.
func (w *Waiter) WaitForScreenFunc(pred func(model.Screen) bool, timeout time.Duration) bool {
	deadline := w.sleeper.Now().Add(timeout)
	current, ok := w.screens.Current(false)
	for w.sleeper.Now().Before(deadline) {
		if ok && pred(current) {
			return true
		}
		w.sleeper.SleepSync()
		current, ok = w.screens.Current(false)
	}
	w.logger.Debug("screen not reached",
		zap.String("current", current.ID),
		zap.Duration("timeout", timeout),
	)
	return false
}

// WaitForText searches for q until a match is found or timeout elapses
// (the large timeout when zero). SinglePass runs one search cycle per outer
// iteration; RetryUntilDeadline hands the whole budget to one search.
func (w *Waiter) WaitForText(q search.Query, timeout time.Duration, policy search.Policy) *model.Node {
	timeout = w.or(timeout, w.largeTimeout)
	deadline := w.sleeper.Now().Add(timeout)
	for {
		if w.timedOut(deadline) {
			w.logger.Debug("text not found", zap.String("pattern", q.Pattern), zap.Duration("timeout", timeout))
			return nil
		}
		w.sleeper.Sleep()

		inner := q
		inner.Policy = policy
		inner.Timeout = 0
		if policy == search.RetryUntilDeadline {
			inner.Timeout = deadline.Sub(w.sleeper.Now())
		}
		if n := w.searcher.SearchFor(inner); n != nil {
			return n
		}
		if policy == search.RetryUntilDeadline {
			return nil
		}
	}
}

// WaitForNode waits until more than index distinct shown nodes of typ have
// been seen and returns the one at index (the small timeout when zero).
func (w *Waiter) WaitForNode(typ string, index int, timeout time.Duration, scroll bool) *model.Node {
	timeout = w.or(timeout, w.smallTimeout)
	deadline := w.sleeper.Now().Add(timeout)
	set := search.NewMatchSet()
	for w.sleeper.Now().Before(deadline) {
		w.sleeper.Sleep()
		if w.searcher.IndexReached(set, typ, index) {
			if n := w.pick(typ, index); n != nil {
				return n
			}
		}
		if scroll {
			w.searcher.ScrollDown()
		}
	}
	w.logger.Debug("node not found", zap.String("type", typ), zap.Int("index", index))
	return nil
}

// pick maps a distinct-count index onto the nodes currently on screen. When
// scrolling moved earlier matches out of view the index shifts by the
// number of nodes no longer shown.
func (w *Waiter) pick(typ string, index int) *model.Node {
	visible := w.searcher.Visible(typ)
	unique := w.searcher.Unique()
	if len(visible) < unique {
		if shifted := index - (unique - len(visible)); shifted >= 0 {
			index = shifted
		}
	}
	if index < 0 || index >= len(visible) {
		return nil
	}
	return visible[index]
}

// WaitForNodeID waits for the (index+1)th distinct node whose resource id
// or identity equals id, searching every node rather than only shown ones.
func (w *Waiter) WaitForNodeID(id string, index int, timeout time.Duration, scroll bool) *model.Node {
	timeout = w.or(timeout, w.smallTimeout)
	deadline := w.sleeper.Now().Add(timeout)
	set := search.NewMatchSet()
	for !w.timedOut(deadline) {
		w.sleeper.Sleep()
		for _, n := range w.nodes.AllNodes(false).Nodes {
			if n.ResourceID != id && n.ID != id {
				continue
			}
			if set.Add(n) > index {
				return n
			}
		}
		if scroll {
			w.searcher.ScrollDown()
		}
	}
	w.logger.Debug("node id not found", zap.String("id", id), zap.Int("index", index))
	return nil
}

// WaitForAnyType waits up to the small timeout for a shown node of any of
// the given types.
func (w *Waiter) WaitForAnyType(types []string, scroll bool) bool {
	deadline := w.sleeper.Now().Add(w.smallTimeout)
	for w.sleeper.Now().Before(deadline) {
		for _, typ := range types {
			if w.searcher.IndexReached(search.NewMatchSet(), typ, 0) {
				return true
			}
		}
		if scroll {
			w.searcher.ScrollDown()
		}
		w.sleeper.Sleep()
	}
	return false
}

// WaitForNodeShown waits until a node with n's identity is in the visible
// tree.
func (w *Waiter) WaitForNodeShown(n *model.Node, timeout time.Duration, scroll bool) bool {
	if n == nil {
		return false
	}
	timeout = w.or(timeout, w.smallTimeout)
	deadline := w.sleeper.Now().Add(timeout)
	for w.sleeper.Now().Before(deadline) {
		w.sleeper.Sleep()
		if w.searcher.Contains(n) {
			return true
		}
		if scroll {
			w.searcher.ScrollDown()
		}
	}
	return false
}
