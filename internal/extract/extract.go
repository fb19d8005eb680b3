// Package extract turns the platform's live widget trees into flat,
// visibility-filtered snapshots.
package extract

import (
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap"
)

// ScreenSource reports the foreground screen without blocking.
// *lifecycle.Tracker satisfies it.
type ScreenSource interface {
	Current(mustWait bool) (model.Screen, bool)
}

// Extractor reads snapshots from an Introspector.
type Extractor struct {
	port    platform.Introspector
	screens ScreenSource
	clock   sleeper.Clock
	logger  *zap.Logger
}

// New returns an Extractor. A nil clock means the wall clock and a nil
// logger discards output.
func New(port platform.Introspector, screens ScreenSource, clock sleeper.Clock, logger *zap.Logger) *Extractor {
	if clock == nil {
		clock = sleeper.System
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		port:    port,
		screens: screens,
		clock:   clock,
		logger:  logger.Named("extract"),
	}
}

// AllNodes extracts every live plain root in full, followed by the topmost
// overlay root. Within each root descendants come first in pre-order and the
// root itself last. With onlyVisible, descendants that are not sufficiently
// shown are left out; roots are always kept. Any introspection failure
// yields an empty snapshot.
func (e *Extractor) AllNodes(onlyVisible bool) model.Snapshot {
	roots, err := e.port.LiveRoots()
	if err != nil {
		e.logger.Warn("introspection failed", zap.String("op", "live_roots"), zap.Error(err))
		return e.empty()
	}

	vis := e.newVisibility()
	var nodes []*model.Node
	var overlays []*model.Node
	for _, r := range roots {
		if r == nil {
			continue
		}
		if r.Kind == model.KindOverlayRoot {
			overlays = append(overlays, r)
			continue
		}
		nodes = appendTree(nodes, r, onlyVisible, vis)
	}
	if top := model.TopmostOverlayRoot(overlays); top != nil {
		nodes = appendTree(nodes, top, onlyVisible, vis)
	}

	if vis.err != nil {
		e.logger.Warn("introspection failed", zap.String("op", "display_height"), zap.Error(vis.err))
		return e.empty()
	}
	return model.NewSnapshot(e.clock.Now(), nodes)
}

// Nodes extracts root and its descendants, root first. A nil root means
// AllNodes.
func (e *Extractor) Nodes(root *model.Node, onlyVisible bool) model.Snapshot {
	if root == nil {
		return e.AllNodes(onlyVisible)
	}
	vis := e.newVisibility()
	nodes := []*model.Node{root}
	for _, n := range model.Descendants(root) {
		if !onlyVisible || vis.shown(n) {
			nodes = append(nodes, n)
		}
	}
	if vis.err != nil {
		e.logger.Warn("introspection failed", zap.String("op", "display_height"), zap.Error(vis.err))
		return e.empty()
	}
	return model.NewSnapshot(e.clock.Now(), nodes)
}

// NodesOfType returns the sufficiently shown nodes satisfying typ under
// root, or under every live root when root is nil.
func (e *Extractor) NodesOfType(typ string, root *model.Node) model.Snapshot {
	all := e.Nodes(root, true)
	return model.NewSnapshot(all.TakenAt, model.FilterByType(all.Nodes, []string{typ}))
}

// SufficientlyShown reports whether the node's vertical center lies within
// its nearest scrollable container, or within the display when it has none.
func (e *Extractor) SufficientlyShown(n *model.Node) bool {
	vis := e.newVisibility()
	shown := vis.shown(n)
	if vis.err != nil {
		e.logger.Debug("visibility check failed", zap.Error(vis.err))
		return false
	}
	return shown
}

func (e *Extractor) empty() model.Snapshot {
	return model.NewSnapshot(e.clock.Now(), nil)
}

func appendTree(dst []*model.Node, root *model.Node, onlyVisible bool, vis *visibility) []*model.Node {
	for _, n := range model.Descendants(root) {
		if !onlyVisible || vis.shown(n) {
			dst = append(dst, n)
		}
	}
	return append(dst, root)
}
