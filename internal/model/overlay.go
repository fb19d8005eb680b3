package model

// TopmostOverlayRoot picks the overlay root the user is most likely looking
// at: shown, focused, and most recently drawn. Roots with a draw time of zero
// never win. Returns nil if no root qualifies.
func TopmostOverlayRoot(roots []*Node) *Node {
	var best *Node
	var drawTime int64
	for _, r := range roots {
		if r == nil || !r.Shown || !r.Focused {
			continue
		}
		if r.DrawTime > drawTime {
			best = r
			drawTime = r.DrawTime
		}
	}
	return best
}

// NearestContainer returns the closest scrollable node starting from n
// itself and walking up through its parents. Returns nil when the node is
// not inside any scrollable container.
func NearestContainer(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindScrollable {
			return cur
		}
	}
	return nil
}

// FreshestNode returns the most recently drawn node with a positive height
// whose left edge is on screen. Returns nil for an empty list.
func FreshestNode(nodes []*Node) *Node {
	var best *Node
	var drawTime int64
	for _, n := range nodes {
		if n == nil || n.Bounds[0] < 0 {
			continue
		}
		if n.DrawTime > drawTime && n.Bounds[3] > 0 {
			best = n
			drawTime = n.DrawTime
		}
	}
	return best
}

// IsOverlayOf reports whether root is a shown overlay owned by screen other
// than the screen's own main root, e.g. a dialog opened over it.
func IsOverlayOf(screen Screen, root *Node) bool {
	if root == nil || !root.Shown {
		return false
	}
	if root.Kind != KindOverlayRoot || root.Owner != screen.ID {
		return false
	}
	return root.ID != screen.RootID
}
