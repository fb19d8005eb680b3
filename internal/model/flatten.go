package model

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	ID         string        `yaml:"id"                    json:"id"`
	ResourceID string        `yaml:"resource_id,omitempty" json:"resource_id,omitempty"`
	Type       string        `yaml:"type"                  json:"type"`
	Text       string        `yaml:"text,omitempty"        json:"text,omitempty"`
	Label      string        `yaml:"label,omitempty"       json:"label,omitempty"`
	Hint       string        `yaml:"hint,omitempty"        json:"hint,omitempty"`
	Error      string        `yaml:"error,omitempty"       json:"error,omitempty"`
	Bounds     [4]int        `yaml:"bounds"                json:"bounds"`
	Kind       ContainerKind `yaml:"kind,omitempty"        json:"kind,omitempty"`
	Shown      bool          `yaml:"shown"                 json:"shown"`
	Ref        string        `yaml:"ref,omitempty"         json:"ref,omitempty"`
	Path       string        `yaml:"path,omitempty"        json:"path,omitempty"`
}

// Flatten converts a single node to its flat form. The path is built from
// the node's ancestors using " > " between type names.
func Flatten(n *Node) FlatNode {
	return FlatNode{
		ID:         n.ID,
		ResourceID: n.ResourceID,
		Type:       n.Type,
		Text:       n.Text,
		Label:      n.Label,
		Hint:       n.Hint,
		Error:      n.Error,
		Bounds:     n.Bounds,
		Kind:       n.Kind,
		Shown:      n.Shown,
		Ref:        NodeRef(n),
		Path:       PathOf(n),
	}
}

// FlattenNodes converts a node sequence, such as a Snapshot's, to flat form
// preserving order.
func FlattenNodes(nodes []*Node) []FlatNode {
	result := make([]FlatNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		result = append(result, Flatten(n))
	}
	return result
}

// PathOf returns the breadcrumb of type names from the root down to n.
func PathOf(n *Node) string {
	var types []string
	for cur := n; cur != nil; cur = cur.Parent {
		types = append(types, cur.Type)
	}
	path := ""
	for i := len(types) - 1; i >= 0; i-- {
		if path == "" {
			path = types[i]
		} else {
			path += " > " + types[i]
		}
	}
	return path
}
