package model

import "strings"

// FilterByType keeps nodes that satisfy any of the given types. An empty
// type list keeps everything.
func FilterByType(nodes []*Node, types []string) []*Node {
	if len(types) == 0 {
		return nodes
	}
	var result []*Node
	for _, n := range nodes {
		for _, t := range types {
			if n.IsA(t) {
				result = append(result, n)
				break
			}
		}
	}
	return result
}

// FilterShown drops nodes the platform reports as not shown.
func FilterShown(nodes []*Node) []*Node {
	var result []*Node
	for _, n := range nodes {
		if n.Shown {
			result = append(result, n)
		}
	}
	return result
}

// FilterByText keeps nodes whose text, label, hint, or error contains the
// given text (case-insensitive).
func FilterByText(nodes []*Node, text string) []*Node {
	if text == "" {
		return nodes
	}
	textLower := strings.ToLower(text)
	var result []*Node
	for _, n := range nodes {
		if textMatchesNode(n, textLower) {
			result = append(result, n)
		}
	}
	return result
}

func textMatchesNode(n *Node, textLower string) bool {
	return strings.Contains(strings.ToLower(n.Text), textLower) ||
		strings.Contains(strings.ToLower(n.Label), textLower) ||
		strings.Contains(strings.ToLower(n.Hint), textLower) ||
		strings.Contains(strings.ToLower(n.Error), textLower)
}

// FilterByBounds keeps nodes intersecting the [x, y, width, height] box.
func FilterByBounds(nodes []*Node, bbox [4]int) []*Node {
	var result []*Node
	for _, n := range nodes {
		if boundsIntersect(n.Bounds, bbox) {
			result = append(result, n)
		}
	}
	return result
}

// isEmptyLayout reports whether a node is a structural container carrying
// no text of its own.
func isEmptyLayout(n FlatNode) bool {
	return strings.HasSuffix(n.Type, "Layout") &&
		n.Text == "" && n.Label == "" && n.Hint == "" && n.Error == ""
}

// PruneEmptyLayouts removes text-less layout containers from a flat list.
// Paths of the remaining nodes are left intact.
func PruneEmptyLayouts(nodes []FlatNode) []FlatNode {
	var result []FlatNode
	for _, n := range nodes {
		if isEmptyLayout(n) {
			continue
		}
		result = append(result, n)
	}
	return result
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
