package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Snapshot is one point-in-time extraction of the UI tree. It is not
// retained by the engine.
type Snapshot struct {
	ID      string    `yaml:"id"       json:"id"`
	TakenAt time.Time `yaml:"taken_at" json:"taken_at"`
	Nodes   []*Node   `yaml:"-"        json:"-"`
}

// NewSnapshot stamps nodes with a sortable ID and the given time.
func NewSnapshot(at time.Time, nodes []*Node) Snapshot {
	return Snapshot{
		ID:      ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		TakenAt: at,
		Nodes:   nodes,
	}
}

// Len returns the number of nodes in the snapshot.
func (s Snapshot) Len() int { return len(s.Nodes) }

// OfType returns the snapshot's nodes satisfying typ.
func (s Snapshot) OfType(typ string) []*Node {
	var result []*Node
	for _, n := range s.Nodes {
		if n.IsA(typ) {
			result = append(result, n)
		}
	}
	return result
}

// Find returns the node with the given identity.
func (s Snapshot) Find(id string) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// HashChange is a node whose mutable properties changed between snapshots.
type HashChange struct {
	ID      string               `yaml:"id"             json:"id"`
	Type    string               `yaml:"type,omitempty" json:"type,omitempty"`
	Text    string               `yaml:"text,omitempty" json:"text,omitempty"`
	Changes map[string][2]string `yaml:"changes"        json:"changes"`
}

// TreeDiff is the result of comparing two flattened snapshots by content hash.
type TreeDiff struct {
	Added          []FlatNode   `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatNode   `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []HashChange `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int          `yaml:"unchanged_count"   json:"unchanged_count"`
}

// NodeHash computes an identity hash from a node's semantic content and
// tree position. It lets nodes be matched across platforms that recycle
// identities, such as list rows.
func NodeHash(n FlatNode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", n.Type, n.ResourceID, n.Label, n.Hint, n.Path)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffByHash compares two flat node lists using content hashing. Unlike
// DiffNodes, which matches by identity, this tolerates identities being
// reassigned between reads.
func DiffByHash(prev, curr []FlatNode) TreeDiff {
	prevByHash := make(map[string]FlatNode, len(prev))
	for _, n := range prev {
		prevByHash[NodeHash(n)] = n
	}
	currByHash := make(map[string]FlatNode, len(curr))
	for _, n := range curr {
		currByHash[NodeHash(n)] = n
	}

	var diff TreeDiff
	for _, n := range curr {
		prevNode, existed := prevByHash[NodeHash(n)]
		if !existed {
			diff.Added = append(diff.Added, n)
			continue
		}
		if changes := diffHashedProperties(prevNode, n); len(changes) > 0 {
			diff.Changed = append(diff.Changed, HashChange{
				ID:      n.ID,
				Type:    n.Type,
				Text:    n.Text,
				Changes: changes,
			})
		} else {
			diff.UnchangedCount++
		}
	}
	for _, n := range prev {
		if _, exists := currByHash[NodeHash(n)]; !exists {
			diff.Removed = append(diff.Removed, n)
		}
	}
	return diff
}

// diffHashedProperties compares the properties not covered by NodeHash.
func diffHashedProperties(prev, curr FlatNode) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Text != curr.Text {
		diffs["text"] = [2]string{prev.Text, curr.Text}
	}
	if prev.Error != curr.Error {
		diffs["error"] = [2]string{prev.Error, curr.Error}
	}
	if prev.Bounds != curr.Bounds {
		diffs["bounds"] = [2]string{fmt.Sprintf("%v", prev.Bounds), fmt.Sprintf("%v", curr.Bounds)}
	}
	if prev.Shown != curr.Shown {
		diffs["shown"] = [2]string{fmt.Sprintf("%v", prev.Shown), fmt.Sprintf("%v", curr.Shown)}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
