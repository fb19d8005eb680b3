package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mj1618/uisync/internal/model"
)

// Column widths for WriteNodeTable.
const (
	idWidth   = 24
	typeWidth = 18
	textWidth = 32
)

// WriteNodeTable writes one aligned row per node: id, type, text, bounds and
// a flag column ("*" shown, "-" clipped). Wide runes count by display width.
func WriteNodeTable(w io.Writer, nodes []model.FlatNode) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s %s\n",
		cell("ID", idWidth), cell("TYPE", typeWidth), cell("TEXT", textWidth), cell("BOUNDS", 20), "V")
	for _, n := range nodes {
		flag := "-"
		if n.Shown {
			flag = "*"
		}
		bounds := fmt.Sprintf("%d,%d,%d,%d", n.Bounds[0], n.Bounds[1], n.Bounds[2], n.Bounds[3])
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			cell(n.ID, idWidth), cell(n.Type, typeWidth), cell(displayText(n), textWidth), cell(bounds, 20), flag)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// displayText picks what a user sees for the node: text, else hint, else
// label.
func displayText(n model.FlatNode) string {
	switch {
	case n.Text != "":
		return n.Text
	case n.Hint != "":
		return "(" + n.Hint + ")"
	default:
		return n.Label
	}
}

// cell truncates s to width display columns and pads it to exactly width.
func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}
