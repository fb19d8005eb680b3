package model

import (
	"fmt"
	"time"
)

// ChangeType represents the kind of UI change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// UIChange represents a single change between two snapshots.
type UIChange struct {
	Type     ChangeType           `json:"type"`
	TS       int64                `json:"ts"`
	Node     *FlatNode            `json:"node,omitempty"`    // For added: the full node
	ID       string               `json:"id,omitempty"`      // For removed/changed: node identity
	NodeType string               `json:"t,omitempty"`       // For removed: declared type
	Text     string               `json:"text,omitempty"`    // For removed: display text
	Changes  map[string][2]string `json:"changes,omitempty"` // For changed: field diffs
}

// DiffNodes compares two flat node lists matched by identity and returns
// the changes, stamped with ts.
func DiffNodes(prev, curr []FlatNode, ts time.Time) []UIChange {
	prevMap := make(map[string]FlatNode, len(prev))
	for _, n := range prev {
		prevMap[n.ID] = n
	}
	currMap := make(map[string]FlatNode, len(curr))
	for _, n := range curr {
		currMap[n.ID] = n
	}

	var changes []UIChange
	stamp := ts.Unix()

	for _, n := range curr {
		prevNode, existed := prevMap[n.ID]
		if !existed {
			nodeCopy := n
			changes = append(changes, UIChange{Type: ChangeAdded, TS: stamp, Node: &nodeCopy})
			continue
		}
		if diffs := diffProperties(prevNode, n); len(diffs) > 0 {
			changes = append(changes, UIChange{Type: ChangeChanged, TS: stamp, ID: n.ID, Changes: diffs})
		}
	}

	for _, n := range prev {
		if _, exists := currMap[n.ID]; !exists {
			changes = append(changes, UIChange{
				Type:     ChangeRemoved,
				TS:       stamp,
				ID:       n.ID,
				NodeType: n.Type,
				Text:     n.Text,
			})
		}
	}
	return changes
}

// diffProperties compares every displayed field of two nodes with the same
// identity.
func diffProperties(prev, curr FlatNode) map[string][2]string {
	diffs := diffHashedProperties(prev, curr)
	if diffs == nil {
		diffs = make(map[string][2]string)
	}
	if prev.Type != curr.Type {
		diffs["type"] = [2]string{prev.Type, curr.Type}
	}
	if prev.Label != curr.Label {
		diffs["label"] = [2]string{prev.Label, curr.Label}
	}
	if prev.Hint != curr.Hint {
		diffs["hint"] = [2]string{prev.Hint, curr.Hint}
	}
	if prev.Path != curr.Path {
		diffs["path"] = [2]string{prev.Path, curr.Path}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

// IgnoreFields removes the named keys from every change's field diff and
// drops changes that end up empty.
func IgnoreFields(changes []UIChange, fields ...string) []UIChange {
	if len(fields) == 0 {
		return changes
	}
	var result []UIChange
	for _, c := range changes {
		if c.Type != ChangeChanged {
			result = append(result, c)
			continue
		}
		for _, f := range fields {
			delete(c.Changes, f)
		}
		if len(c.Changes) > 0 {
			result = append(result, c)
		}
	}
	return result
}

// String renders a one-line summary of the change.
func (c UIChange) String() string {
	switch c.Type {
	case ChangeAdded:
		if c.Node != nil {
			return fmt.Sprintf("+ %s %s %q", c.Node.ID, c.Node.Type, c.Node.Text)
		}
	case ChangeRemoved:
		return fmt.Sprintf("- %s %s %q", c.ID, c.NodeType, c.Text)
	case ChangeChanged:
		return fmt.Sprintf("~ %s %v", c.ID, c.Changes)
	}
	return string(c.Type)
}
