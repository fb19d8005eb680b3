package driver

import (
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/search"
	"github.com/mj1618/uisync/internal/wait"
	"go.uber.org/zap"
)

// NodeQuery selects one node. Ref takes precedence over ID, ID over
// Pattern, and Pattern over a bare Type + Index lookup.
type NodeQuery struct {
	Ref         string        `yaml:"ref,omitempty"     json:"ref,omitempty"` // path ref as printed by nodes
	Type        string        `yaml:"type,omitempty"    json:"type,omitempty"`
	Index       int           `yaml:"index,omitempty"   json:"index,omitempty"` // zero-based
	Pattern     string        `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	ID          string        `yaml:"id,omitempty"      json:"id,omitempty"` // resource id or node identity
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Scroll      *bool         `yaml:"scroll,omitempty"  json:"scroll,omitempty"` // nil uses the configured default
	OnlyVisible bool          `yaml:"visible,omitempty" json:"visible,omitempty"`
	Shown       bool          `yaml:"shown,omitempty"   json:"shown,omitempty"` // also wait until the match is sufficiently shown
}

func (q NodeQuery) scroll(def bool) bool {
	if q.Scroll == nil {
		return def
	}
	return *q.Scroll
}

// FindNode waits up to q.Timeout (the small timeout when zero) for the node
// q selects. Returns nil if it never appears.
func (d *Driver) FindNode(q NodeQuery) *model.Node {
	timeout := d.or(q.Timeout, d.cfg.SmallTimeout)
	scroll := q.scroll(d.cfg.Scroll)
	q.Type = model.MapType(q.Type)
	var n *model.Node
	switch {
	case q.Ref != "":
		n = d.findByRef(q.Ref, timeout)
	case q.ID != "":
		n = d.waiter.WaitForNodeID(q.ID, q.Index, timeout, scroll)
	case q.Pattern != "":
		n = d.waiter.WaitForText(search.Query{
			Type:        q.Type,
			Pattern:     q.Pattern,
			Expected:    q.Index + 1,
			Scroll:      scroll,
			OnlyVisible: q.OnlyVisible,
		}, timeout, search.SinglePass)
	default:
		n = d.waiter.WaitForNode(q.Type, q.Index, timeout, scroll)
	}
	if n != nil && q.Shown && !d.waiter.WaitForNodeShown(n, timeout, scroll) {
		d.logger.Debug("node found but never shown", zap.String("node", n.ID))
		n = nil
	}
	if n == nil {
		d.logger.Debug("node not found",
			zap.String("type", q.Type),
			zap.Int("index", q.Index),
			zap.String("pattern", q.Pattern),
			zap.String("id", q.ID),
			zap.String("ref", q.Ref),
		)
	}
	return n
}

// findByRef polls the shown tree until exactly one node resolves ref.
func (d *Driver) findByRef(ref string, timeout time.Duration) *model.Node {
	var found *model.Node
	var lastErr error
	d.waiter.WaitFor(wait.ConditionFunc(func() bool {
		found, lastErr = model.FindByRef(d.AllNodes(true).Nodes, ref)
		return found != nil
	}), timeout, search.SinglePass)
	if found == nil && lastErr != nil {
		d.logger.Debug("ref not resolved", zap.String("ref", ref), zap.Error(lastErr))
	}
	return found
}

// WaitFor polls cond until it holds or timeout (the small timeout when
// zero) elapses.
func (d *Driver) WaitFor(cond wait.Condition, timeout time.Duration) bool {
	return d.waiter.WaitFor(cond, d.or(timeout, d.cfg.SmallTimeout), search.SinglePass)
}

// WaitForScreen waits for a foreground screen with the given identity or
// type name.
func (d *Driver) WaitForScreen(name string, timeout time.Duration) bool {
	return d.waiter.WaitForScreen(name, d.or(timeout, d.cfg.SmallTimeout))
}

// TextQuery is a text wait.
type TextQuery struct {
	Pattern     string        `yaml:"pattern"           json:"pattern"`
	Type        string        `yaml:"type,omitempty"    json:"type,omitempty"`
	Expected    int           `yaml:"expected,omitempty" json:"expected,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Scroll      *bool         `yaml:"scroll,omitempty"  json:"scroll,omitempty"`
	OnlyVisible bool          `yaml:"visible,omitempty" json:"visible,omitempty"`
	HardStop    bool          `yaml:"hard_stop,omitempty" json:"hard_stop,omitempty"` // retry until the deadline inside one search
}

// WaitForText waits for the q.Expected-th distinct node matching q.Pattern.
// The timeout defaults to the large timeout.
func (d *Driver) WaitForText(q TextQuery) *model.Node {
	policy := search.SinglePass
	if q.HardStop {
		policy = search.RetryUntilDeadline
	}
	scroll := d.cfg.Scroll
	if q.Scroll != nil {
		scroll = *q.Scroll
	}
	return d.waiter.WaitForText(search.Query{
		Type:        model.MapType(q.Type),
		Pattern:     q.Pattern,
		Expected:    q.Expected,
		Scroll:      scroll,
		OnlyVisible: q.OnlyVisible,
	}, d.or(q.Timeout, d.cfg.LargeTimeout), policy)
}

// WaitForNode waits for the (index+1)th distinct shown node of typ, which
// may be a short alias.
func (d *Driver) WaitForNode(typ string, index int, timeout time.Duration, scroll bool) *model.Node {
	return d.waiter.WaitForNode(model.MapType(typ), index, d.or(timeout, d.cfg.SmallTimeout), scroll)
}

// WaitForAnyType waits up to the small timeout for a shown node of any of
// types, which may be short aliases.
func (d *Driver) WaitForAnyType(types []string) bool {
	return d.waiter.WaitForAnyType(model.ExpandTypes(types), d.cfg.Scroll)
}

// WaitForNodeShown waits until n is sufficiently shown.
func (d *Driver) WaitForNodeShown(n *model.Node, timeout time.Duration) bool {
	return d.waiter.WaitForNodeShown(n, d.or(timeout, d.cfg.SmallTimeout), d.cfg.Scroll)
}

// HasText repeats single-pass searches for pattern until one succeeds or
// the search timeout elapses.
func (d *Driver) HasText(pattern string) bool {
	return d.searcher.SearchWithTimeout(search.Query{Pattern: pattern, Scroll: d.cfg.Scroll})
}

// WaitForOverlay waits for an overlay of the foreground screen to open, or
// with open false, to close.
func (d *Driver) WaitForOverlay(open bool, timeout time.Duration) bool {
	timeout = d.or(timeout, d.cfg.SmallTimeout)
	if open {
		return d.waiter.WaitForOverlayOpen(timeout)
	}
	return d.waiter.WaitForOverlayClose(timeout)
}

// WaitForExpression compiles expression and waits for it to hold. Compile
// errors are returned; evaluation errors count as not yet satisfied.
func (d *Driver) WaitForExpression(expression string, timeout time.Duration) (bool, error) {
	cond, err := d.conditions.Compile(expression)
	if err != nil {
		return false, err
	}
	return d.WaitFor(cond.Bind(d, d.logger), timeout), nil
}

// Check evaluates expression once against the current state.
func (d *Driver) Check(expression string) (bool, error) {
	cond, err := d.conditions.Compile(expression)
	if err != nil {
		return false, err
	}
	return cond.Evaluate(d.Env())
}
