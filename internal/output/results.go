package output

import (
	"fmt"
	"io"
	"time"

	"github.com/mj1618/uisync/internal/model"
)

// ScreenResult is the output of the `screen` command.
type ScreenResult struct {
	Found   bool          `yaml:"found"             json:"found"`
	Screen  *model.Screen `yaml:"screen,omitempty"  json:"screen,omitempty"`
	Overlay bool          `yaml:"overlay,omitempty" json:"overlay,omitempty"`
}

func (r ScreenResult) WriteText(w io.Writer) error {
	if !r.Found {
		_, err := fmt.Fprintln(w, "no screen")
		return err
	}
	suffix := ""
	if r.Overlay {
		suffix = " [overlay]"
	}
	_, err := fmt.Fprintf(w, "%s (%s)%s\n", r.Screen.ID, r.Screen.Type, suffix)
	return err
}

// ScreensResult is the output of the `screens` command, bottom first.
type ScreensResult struct {
	Screens []model.Screen `yaml:"screens" json:"screens"`
}

func (r ScreensResult) WriteText(w io.Writer) error {
	for i, s := range r.Screens {
		marker := " "
		if i == len(r.Screens)-1 {
			marker = ">"
		}
		if _, err := fmt.Fprintf(w, "%s %s (%s)\n", marker, s.ID, s.Type); err != nil {
			return err
		}
	}
	return nil
}

// NodesResult is the output of the `nodes` command.
type NodesResult struct {
	Snapshot string           `yaml:"snapshot"         json:"snapshot"`
	TS       int64            `yaml:"ts"               json:"ts"`
	Screen   string           `yaml:"screen,omitempty" json:"screen,omitempty"`
	Count    int              `yaml:"count"            json:"count"`
	Nodes    []model.FlatNode `yaml:"nodes"            json:"nodes"`
}

// NewNodesResult flattens a snapshot for output.
func NewNodesResult(s model.Snapshot, screen string) NodesResult {
	flat := model.FlattenNodes(s.Nodes)
	model.DeduplicateRefs(flat)
	return NodesResult{
		Snapshot: s.ID,
		TS:       s.TakenAt.Unix(),
		Screen:   screen,
		Count:    len(flat),
		Nodes:    flat,
	}
}

func (r NodesResult) WriteText(w io.Writer) error {
	return WriteNodeTable(w, r.Nodes)
}

// FindResult is the output of the `find` command.
type FindResult struct {
	OK      bool            `yaml:"ok"              json:"ok"`
	Query   string          `yaml:"query"           json:"query"`
	Elapsed string          `yaml:"elapsed"         json:"elapsed"`
	Node    *model.FlatNode `yaml:"node,omitempty"  json:"node,omitempty"`
}

func (r FindResult) WriteText(w io.Writer) error {
	if r.Node == nil {
		_, err := fmt.Fprintf(w, "not found: %s (%s)\n", r.Query, r.Elapsed)
		return err
	}
	return WriteNodeTable(w, []model.FlatNode{*r.Node})
}

// WaitResult is the output of a wait.
type WaitResult struct {
	OK       bool            `yaml:"ok"                  json:"ok"`
	Action   string          `yaml:"action"              json:"action"`
	Elapsed  string          `yaml:"elapsed"             json:"elapsed"`
	Match    string          `yaml:"match,omitempty"     json:"match,omitempty"`
	TimedOut bool            `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
	Node     *model.FlatNode `yaml:"node,omitempty"      json:"node,omitempty"`
	Error    string          `yaml:"error,omitempty"     json:"error,omitempty"`
}

func (r WaitResult) WriteText(w io.Writer) error {
	status := "ok"
	switch {
	case r.TimedOut:
		status = "timed out"
	case !r.OK:
		status = "failed"
	}
	_, err := fmt.Fprintf(w, "%s: %s after %s\n", status, r.Match, r.Elapsed)
	return err
}

// Elapsed formats a duration the way every command reports it.
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FlatPtr flattens n for inclusion in a result, or returns nil.
func FlatPtr(n *model.Node) *model.FlatNode {
	if n == nil {
		return nil
	}
	f := model.Flatten(n)
	return &f
}
