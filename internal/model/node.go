package model

// Node is a single widget in a live UI tree.
type Node struct {
	ID         string        `yaml:"id"                    json:"id"`                    // Platform identity, stable for the widget's lifetime
	ResourceID string        `yaml:"resource_id,omitempty" json:"resource_id,omitempty"` // Developer-assigned name
	Type       string        `yaml:"type"                  json:"type"`                  // Declared widget type
	Supertypes []string      `yaml:"supertypes,omitempty"  json:"supertypes,omitempty"`  // Types this widget also satisfies
	Text       string        `yaml:"text,omitempty"        json:"text,omitempty"`        // Display text
	Label      string        `yaml:"label,omitempty"       json:"label,omitempty"`       // Accessibility label
	Hint       string        `yaml:"hint,omitempty"        json:"hint,omitempty"`        // Placeholder text
	Error      string        `yaml:"error,omitempty"       json:"error,omitempty"`       // Validation error text
	Bounds     [4]int        `yaml:"bounds"                json:"bounds"`                // [x, y, width, height] in screen space
	Kind       ContainerKind `yaml:"kind,omitempty"        json:"kind,omitempty"`
	Shown      bool          `yaml:"shown"                 json:"shown"`              // Platform visibility flag
	Focused    bool          `yaml:"focused,omitempty"     json:"focused,omitempty"`  // Window focus, meaningful on roots
	DrawTime   int64         `yaml:"draw_time,omitempty"   json:"draw_time,omitempty"` // Last draw, ms
	Owner      string        `yaml:"owner,omitempty"       json:"owner,omitempty"`     // Owning screen ID, set on roots
	Children   []*Node       `yaml:"children,omitempty"    json:"children,omitempty"`

	Parent *Node `yaml:"-" json:"-"`
}

// IsA reports whether the node is of the given type, either declared or
// through one of its supertypes. An empty type matches every node.
func (n *Node) IsA(typ string) bool {
	if typ == "" || n.Type == typ {
		return true
	}
	for _, s := range n.Supertypes {
		if s == typ {
			return true
		}
	}
	return false
}

// CenterY returns the vertical center of the node in screen space.
func (n *Node) CenterY() float64 {
	return float64(n.Bounds[1]) + float64(n.Bounds[3])/2.0
}

// Center returns the integer center point of the node.
func (n *Node) Center() (int, int) {
	return n.Bounds[0] + n.Bounds[2]/2, n.Bounds[1] + n.Bounds[3]/2
}

// Bottom returns the y coordinate of the node's bottom edge.
func (n *Node) Bottom() int {
	return n.Bounds[1] + n.Bounds[3]
}

// Root walks parent links to the top of the node's tree.
func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Link sets Parent on every descendant of root. It walks iteratively so
// arbitrarily deep trees are safe.
func Link(root *Node) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range n.Children {
			if c == nil {
				continue
			}
			c.Parent = n
			stack = append(stack, c)
		}
	}
}

// Descendants returns every node below root in pre-order, not including root.
func Descendants(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var result []*Node
	stack := make([]*Node, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, root.Children[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		result = append(result, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return result
}
