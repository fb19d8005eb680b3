package search

import "github.com/mj1618/uisync/internal/model"

// MatchSet accumulates distinct nodes by identity across the snapshots of
// one logical search.
type MatchSet struct {
	seen  map[string]bool
	nodes []*model.Node
}

// NewMatchSet returns an empty set.
func NewMatchSet() *MatchSet {
	return &MatchSet{seen: map[string]bool{}}
}

// Add records n and returns the set size.
func (m *MatchSet) Add(n *model.Node) int {
	if n != nil && !m.seen[n.ID] {
		m.seen[n.ID] = true
		m.nodes = append(m.nodes, n)
	}
	return len(m.nodes)
}

// Observe records n if it matches p and returns the set size either way.
func (m *MatchSet) Observe(n *model.Node, p Pattern) int {
	if p.MatchNode(n) {
		m.Add(n)
	}
	return len(m.nodes)
}

// Len returns the number of distinct nodes recorded.
func (m *MatchSet) Len() int { return len(m.nodes) }

// Contains reports whether a node with the identity was recorded.
func (m *MatchSet) Contains(id string) bool { return m.seen[id] }

// Nodes returns the recorded nodes in first-seen order.
func (m *MatchSet) Nodes() []*model.Node {
	return append([]*model.Node(nil), m.nodes...)
}

// Clear empties the set.
func (m *MatchSet) Clear() {
	m.seen = map[string]bool{}
	m.nodes = nil
}
