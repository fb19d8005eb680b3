package model

import (
	"fmt"
	"regexp"
	"strings"
)

// slugRe matches characters that are not lowercase alphanumeric or hyphens.
var slugRe = regexp.MustCompile(`[^a-z0-9-]+`)

// slugify converts a label to a URL-safe slug: lowercase, hyphens for spaces/special chars.
func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// bestLabel returns the most stable human label for a node. Text is
// preferred over the accessibility label, then the hint. Error text is
// excluded because it comes and goes with validation.
func bestLabel(n *Node) string {
	switch {
	case n.ResourceID != "":
		return n.ResourceID
	case n.Text != "":
		return n.Text
	case n.Label != "":
		return n.Label
	default:
		return n.Hint
	}
}

// isLandmark reports whether a node contributes a segment to the refs of
// its descendants.
func isLandmark(n *Node) bool {
	if n.Kind == KindScrollable {
		return true
	}
	if n.Kind == KindOverlayRoot && n.Parent == nil {
		return false
	}
	return n.ResourceID != "" && len(n.Children) > 0
}

func refSegment(n *Node) string {
	if label := bestLabel(n); label != "" {
		if slug := slugify(label); slug != "" {
			return slug
		}
	}
	return strings.ToLower(n.Type)
}

// NodeRef returns a path-based identifier like "settings-list/wifi" that
// stays stable across reads as long as the node's labels and its landmark
// ancestors do not change.
func NodeRef(n *Node) string {
	segs := []string{refSegment(n)}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if isLandmark(cur) {
			segs = append(segs, refSegment(cur))
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

// DeduplicateRefs appends .1, .2 suffixes to flat nodes sharing a ref.
func DeduplicateRefs(nodes []FlatNode) {
	idx := make(map[string][]int)
	for i := range nodes {
		if nodes[i].Ref != "" {
			idx[nodes[i].Ref] = append(idx[nodes[i].Ref], i)
		}
	}
	for ref, positions := range idx {
		if len(positions) <= 1 {
			continue
		}
		for k, pos := range positions {
			nodes[pos].Ref = fmt.Sprintf("%s.%d", ref, k+1)
		}
	}
}

// FindByRef locates the node whose ref equals ref, or failing that, the
// single node whose ref ends with "/"+ref.
func FindByRef(nodes []*Node, ref string) (*Node, error) {
	var partial []*Node
	for _, n := range nodes {
		r := NodeRef(n)
		if r == ref {
			return n, nil
		}
		if strings.HasSuffix(r, "/"+ref) {
			partial = append(partial, n)
		}
	}

	switch len(partial) {
	case 1:
		return partial[0], nil
	case 0:
		return nil, fmt.Errorf("no node matches ref %q", ref)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "multiple nodes match ref %q:\n", ref)
	for _, n := range partial {
		fmt.Fprintf(&b, "  ref=%q id=%s %s", NodeRef(n), n.ID, n.Type)
		if n.Text != "" {
			fmt.Fprintf(&b, " text=%q", n.Text)
		}
		fmt.Fprintln(&b)
	}
	return nil, fmt.Errorf("%s", b.String())
}
