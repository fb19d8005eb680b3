package condition

import (
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/search"
)

// Env is the UI state a condition is evaluated against.
type Env struct {
	Screen    model.Screen
	HasScreen bool
	Stack     []string
	Nodes     []*model.Node // every node, shown or not
	Visible   []*model.Node // sufficiently shown nodes
	Overlay   bool          // an overlay of the foreground screen is open
}

// vars exposes the Env to expressions:
//
//	screen    {present, id, type, finishing}
//	stack     screen identities, bottom first
//	nodes     every node as {id, resource_id, type, text, label, hint, error, shown, bounds}
//	visible   the sufficiently shown subset of nodes
//	overlay   bool
//	exists(p) any visible node's text matches pattern p
//	count(t)  number of visible nodes of type t
func (e Env) vars() map[string]any {
	screen := map[string]any{
		"present":   e.HasScreen,
		"id":        e.Screen.ID,
		"type":      e.Screen.Type,
		"finishing": e.Screen.Finishing,
	}
	stack := e.Stack
	if stack == nil {
		stack = []string{}
	}
	visible := e.Visible
	return map[string]any{
		"screen":  screen,
		"stack":   stack,
		"nodes":   nodeVars(e.Nodes),
		"visible": nodeVars(visible),
		"overlay": e.Overlay,
		"exists": func(pattern string) bool {
			p := search.Compile(pattern)
			for _, n := range visible {
				if p.MatchNode(n) {
					return true
				}
			}
			return false
		},
		"count": func(typ string) int {
			return len(model.Snapshot{Nodes: visible}.OfType(model.MapType(typ)))
		},
	}
}

func nodeVars(nodes []*model.Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, map[string]any{
			"id":          n.ID,
			"resource_id": n.ResourceID,
			"type":        n.Type,
			"text":        n.Text,
			"label":       n.Label,
			"hint":        n.Hint,
			"error":       n.Error,
			"shown":       n.Shown,
			"bounds":      []int{n.Bounds[0], n.Bounds[1], n.Bounds[2], n.Bounds[3]},
		})
	}
	return out
}
